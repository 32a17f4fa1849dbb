package log

// Standard attribute keys for tabgo log records. Keys follow a dotted
// hierarchy ("data.samples", "bins.requested") so that records can be
// filtered by prefix in log pipelines.

// Operation context.
const (
	// ComponentKey identifies which package is performing the operation.
	// Examples: "preprocessing", "tree", "nn"
	ComponentKey = "ml.component"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "encode"
	OperationKey = "ml.operation"
)

// Data shape.
const (
	// SamplesKey is the number of objects (rows) in the matrix.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns in the matrix.
	FeaturesKey = "data.features"
)

// Binning context.
const (
	// BinsRequestedKey is the caller-requested bin count.
	BinsRequestedKey = "bins.requested"

	// BinsEffectiveKey is the per-column bin count after the
	// distinct-value adjustment.
	BinsEffectiveKey = "bins.effective"

	// EncodingWidthKey is the d_encoding of an LVR-family encoding.
	EncodingWidthKey = "bins.encoding_width"
)
