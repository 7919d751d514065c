package card

import "errors"

// Error kinds shared by the catalogs, the compositor and the exporter.
// Wrap them with fmt.Errorf("...: %w", ErrX) and test with errors.Is.
var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrAssetDecode        = errors.New("asset decode failed")
	ErrInvalidComposition = errors.New("invalid composition")
	ErrOutputWrite        = errors.New("output write failed")
)
