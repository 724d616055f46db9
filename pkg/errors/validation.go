package errors

// Transform argument bounds. Rotation is a signed offset; the UI collects it
// as a whole number of degrees in [-180, 180].
const (
	MinRotation = -180
	MaxRotation = 180
)

// ValidateScale validates a scale multiplier. Zero and negative factors
// would collapse or mirror UV space and are refused outright.
func ValidateScale(scale float64) error {
	if scale <= 0 {
		return New(ErrCodeInvalidScale, "scale must be positive, got %g", scale)
	}
	return nil
}

// ValidateRotation validates a rotation offset in degrees.
func ValidateRotation(rotation int) error {
	if rotation < MinRotation || rotation > MaxRotation {
		return New(ErrCodeInvalidRotation, "rotation must be in [%d, %d], got %d", MinRotation, MaxRotation, rotation)
	}
	return nil
}

// ValidateSelection validates the set of selected texture-set names against
// the names available in the project.
func ValidateSelection(selected map[string]bool, available []string) error {
	if len(available) == 0 {
		return New(ErrCodeNoTextureSets, "the project has no texture sets")
	}
	if len(selected) == 0 {
		return New(ErrCodeNoSelection, "no texture sets selected")
	}
	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[name] = true
	}
	for name := range selected {
		if !known[name] {
			return New(ErrCodeNoSelection, "texture set %q does not exist in the project", name)
		}
	}
	return nil
}
