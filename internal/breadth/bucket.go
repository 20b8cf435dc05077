package breadth

// Bucket is one of the eight fixed percentage-change bands used to classify a
// stock's daily return. The zero value is the highest band; declaration order
// is the display order used by every chart axis and legend, so sorting by the
// integer value always yields the fixed ordering (never alphabetical).
type Bucket int

const (
	BucketAbove7 Bucket = iota // >7%
	Bucket3To7                 // 3~7%
	Bucket1To3                 // 1~3%
	Bucket0To1                 // 0~1%
	BucketNeg1To0              // -1~0%
	BucketNeg3To1              // -3~-1%
	BucketNeg7To3              // -7~-3%
	BucketBelow7               // <-7%

	// BucketUnknown marks rows whose group label is outside the fixed domain.
	// It sorts after every valid bucket and is excluded from chart output.
	BucketUnknown
)

// NumBuckets is the size of the fixed bucket domain, excluding BucketUnknown.
const NumBuckets = 8

var bucketLabels = [NumBuckets]string{
	">7%", "3~7%", "1~3%", "0~1%", "-1~0%", "-3~-1%", "-7~-3%", "<-7%",
}

// Fixed display colors, red shades for gains and green shades for losses
// (A-share convention, red is up).
var bucketColors = [NumBuckets]string{
	"#FF0000", "#FF4D4D", "#FF9999", "#FFD9D9", "#C3E6C3", "#66CC66", "#00B300", "#008000",
}

// String returns the bucket's display label.
func (b Bucket) String() string {
	if !b.Valid() {
		return "unknown"
	}
	return bucketLabels[b]
}

// Color returns the bucket's fixed display color as a hex string.
func (b Bucket) Color() string {
	if !b.Valid() {
		return "#808080"
	}
	return bucketColors[b]
}

// Valid reports whether b is one of the eight fixed buckets.
func (b Bucket) Valid() bool {
	return b >= BucketAbove7 && b < BucketUnknown
}

// ParseBucket maps a group label to its bucket. Labels outside the fixed
// domain return (BucketUnknown, false); the caller decides how loudly to
// complain.
func ParseBucket(label string) (Bucket, bool) {
	for i, l := range bucketLabels {
		if l == label {
			return Bucket(i), true
		}
	}
	return BucketUnknown, false
}

// Buckets returns the eight valid buckets in fixed display order,
// highest band first.
func Buckets() []Bucket {
	out := make([]Bucket, NumBuckets)
	for i := range out {
		out[i] = Bucket(i)
	}
	return out
}

// BucketOrder returns the display labels in fixed order, for clients that
// need to pin a categorical axis.
func BucketOrder() []string {
	return append([]string(nil), bucketLabels[:]...)
}

// ColorMap returns the label to color mapping for the fixed bucket domain.
func ColorMap() map[string]string {
	m := make(map[string]string, NumBuckets)
	for i, l := range bucketLabels {
		m[l] = bucketColors[i]
	}
	return m
}
