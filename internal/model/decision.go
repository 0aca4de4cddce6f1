package model

// Category classifies what kind of disk object a candidate is.
type Category string

// Category constants.
const (
	CategorySystemCritical Category = "SYSTEM_CRITICAL"
	CategoryKnownSafeRule  Category = "KNOWN_SAFE_RULE"
	CategoryTempFiles      Category = "TEMP_FILES"
	CategoryBrowserCache   Category = "BROWSER_CACHE"
	CategoryDependencyTree Category = "DEPENDENCY_TREE"
	CategoryBuildOutput    Category = "BUILD_OUTPUT"
	CategoryGenericCache   Category = "GENERIC_CACHE"
	CategoryDownloads      Category = "DOWNLOADS"
	CategoryUnknown        Category = "UNKNOWN"
)

// Decision is the safety verdict for a single candidate. Immutable after
// creation; one Decision is produced per candidate per analysis pass.
type Decision struct {
	Category        Category
	Reason          string
	MatchedRule     string
	Confidence      float64
	Safe            bool
	AutoApprove     bool
	IsModelDecision bool
}

// ClampConfidence bounds a raw confidence value to [0, 1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
