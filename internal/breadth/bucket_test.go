package breadth

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBucket(t *testing.T) {
	tests := []struct {
		label  string
		want   Bucket
		wantOK bool
	}{
		{">7%", BucketAbove7, true},
		{"3~7%", Bucket3To7, true},
		{"1~3%", Bucket1To3, true},
		{"0~1%", Bucket0To1, true},
		{"-1~0%", BucketNeg1To0, true},
		{"-3~-1%", BucketNeg3To1, true},
		{"-7~-3%", BucketNeg7To3, true},
		{"<-7%", BucketBelow7, true},
		{"7%+", BucketUnknown, false},
		{"", BucketUnknown, false},
		{">7% ", BucketUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseBucket(tt.label)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestBucketOrder(t *testing.T) {
	order := BucketOrder()
	require.Len(t, order, NumBuckets)

	// Highest band first, lowest last; sorting the enum values must
	// reproduce the display order exactly.
	assert.Equal(t, ">7%", order[0])
	assert.Equal(t, "<-7%", order[NumBuckets-1])

	buckets := Buckets()
	assert.True(t, sort.SliceIsSorted(buckets, func(i, j int) bool {
		return buckets[i] < buckets[j]
	}))
	for i, b := range buckets {
		assert.Equal(t, order[i], b.String())
	}

	// The unknown sentinel sorts after every valid bucket.
	for _, b := range buckets {
		assert.Less(t, b, BucketUnknown)
	}
}

func TestBucketColors(t *testing.T) {
	// Red shades for gains, green shades for losses.
	assert.Equal(t, "#FF0000", BucketAbove7.Color())
	assert.Equal(t, "#008000", BucketBelow7.Color())

	cm := ColorMap()
	require.Len(t, cm, NumBuckets)
	for _, b := range Buckets() {
		assert.Equal(t, b.Color(), cm[b.String()])
	}
}

func TestBucketUnknown(t *testing.T) {
	assert.False(t, BucketUnknown.Valid())
	assert.Equal(t, "unknown", BucketUnknown.String())
	assert.Equal(t, "#808080", BucketUnknown.Color())
}
