package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/lay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	md := Report(lay.Result{
		Program: "bell",
		Session: "s-1",
		Ops:     []string{"initialize()", "x(0)", "measure(0, 0)"},
		Bits:    "10",
	})

	assert.Contains(t, md, "# bell\n")
	assert.Contains(t, md, "Session `s-1`")
	assert.Contains(t, md, "x(0)\n")
	assert.Contains(t, md, "| 0 | 1 |\n| 1 | 0 |\n")
	assert.Contains(t, md, "Bits: `10`")
	assert.NotContains(t, md, "Failed")
}

func TestReport_Failure(t *testing.T) {
	md := Report(lay.Result{Error: "boom"})
	assert.Contains(t, md, "# program\n")
	assert.Contains(t, md, "**Failed:** boom")
	assert.NotContains(t, md, "## Results")
}

func TestRenderReport_NoTTY(t *testing.T) {
	out, err := RenderReport(lay.Result{Program: "flip", Bits: "1"}, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "flip")
	assert.Contains(t, out, "Bits:")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}
