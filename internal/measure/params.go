package measure

// Params collects the segmentation and measurement tunables for both modes
// so they can be tested independently of the pipeline.
type Params struct {
	// Grind-mode segmentation
	GrindMinAreaPx  float64 // contours below this are print noise
	GrindMaxAreaPx  float64 // contours above this are smudges or shadows
	GrindClumpCapMM float64 // hard physical cap on major axis; beyond it the blob is touching particles
	UnsharpAmount   float64 // weight of the original image in the unsharp blend
	UnsharpSigma    float64 // blur sigma for the unsharp base

	// Bean-mode segmentation
	BeanBlurKernel       int     // pre-blur kernel size
	BeanBackgroundSig    float64 // sigma of the large-kernel background estimate
	BeanThreshold        float32 // fixed binarization threshold on the flattened image
	BeanMinAreaPx        float64
	BeanMaxElongation    float64 // axis ratio above this is a line artifact, not a bean
	BeanInteriorMarginMM float64 // stage-interior mask margin

	// Derived-quantity constants. Empirical domain values, kept verbatim.
	PenetrationDepthMM  float64 // depth water reaches into a particle
	ExtractionCapPct    float64 // ceiling on the extraction-yield proxy
	SurfaceRateConstant float64 // reference rate constant in mm^2
}

// DefaultParams returns the tuned defaults for the printed sheet revisions.
func DefaultParams() Params {
	return Params{
		GrindMinAreaPx:  4,
		GrindMaxAreaPx:  4000,
		GrindClumpCapMM: 5.0,
		UnsharpAmount:   1.5,
		UnsharpSigma:    3.0,

		BeanBlurKernel:       5,
		BeanBackgroundSig:    30,
		BeanThreshold:        15,
		BeanMinAreaPx:        50,
		BeanMaxElongation:    3.0,
		BeanInteriorMarginMM: 4,

		PenetrationDepthMM:  0.1,
		ExtractionCapPct:    30.0,
		SurfaceRateConstant: 50.0,
	}
}
