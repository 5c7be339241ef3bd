package archive

import (
	"testing"
	"time"

	"formexport/domain/form"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stamp = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func TestBundleRoundTrip(t *testing.T) {
	docs := []form.GeneratedDocument{
		{Filename: "1_20240315_A_form.docx", Content: []byte("first")},
		{Filename: "2_20240315_B_form.docx", Content: []byte("second")},
	}

	data, err := Bundle(docs, stamp)
	require.NoError(t, err)

	back, err := Unbundle(data)
	require.NoError(t, err)
	assert.Equal(t, docs, back)
}

func TestBundleIsDeterministic(t *testing.T) {
	docs := []form.GeneratedDocument{{Filename: "a.docx", Content: []byte("x")}}

	first, err := Bundle(docs, stamp)
	require.NoError(t, err)
	second, err := Bundle(docs, stamp)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBundleRejectsBadNames(t *testing.T) {
	_, err := Bundle([]form.GeneratedDocument{{Filename: ""}}, stamp)
	assert.Error(t, err)

	_, err = Bundle([]form.GeneratedDocument{{Filename: "a"}, {Filename: "a"}}, stamp)
	assert.Error(t, err)
}

func TestBundleEmpty(t *testing.T) {
	data, err := Bundle(nil, stamp)
	require.NoError(t, err)

	back, err := Unbundle(data)
	require.NoError(t, err)
	assert.Empty(t, back)
}

func TestUnbundleGarbage(t *testing.T) {
	_, err := Unbundle([]byte("not a zip"))
	assert.Error(t, err)
}
