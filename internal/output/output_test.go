package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfoAndSuccess_GoToStdout(t *testing.T) {
	u, out, errOut := newTestUI()

	u.Info("opening slot %s", "abc")
	u.Success("saved")

	assert.Contains(t, out.String(), "opening slot abc")
	assert.Contains(t, out.String(), "saved")
	assert.Empty(t, errOut.String())
}

func TestWarningAndError_GoToStderr(t *testing.T) {
	u, out, errOut := newTestUI()

	u.Warning("draft is incomplete")
	u.Error("save failed")

	assert.Contains(t, errOut.String(), "draft is incomplete")
	assert.Contains(t, errOut.String(), "save failed")
	assert.Empty(t, out.String())
}

func TestVerboseLog_OnlyWhenVerbose(t *testing.T) {
	u, out, _ := newTestUI()

	u.VerboseLog("hidden")
	assert.Empty(t, out.String())

	u.Verbose = true
	u.VerboseLog("shown")
	assert.Contains(t, out.String(), "shown")
}

func TestDryRunMsg_OnlyWhenDryRun(t *testing.T) {
	u, _, errOut := newTestUI()

	u.DryRunMsg("would save")
	assert.Empty(t, errOut.String())

	u.DryRun = true
	u.DryRunMsg("would save")
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would save")
}

func TestScoreColor_Bands(t *testing.T) {
	// Colors are disabled in tests (no TTY), so the raw number comes back.
	assert.Contains(t, ScoreColor(95), "95")
	assert.Contains(t, ScoreColor(60), "60")
	assert.Contains(t, ScoreColor(10), "10")
}

func TestStatusColors_PassThroughUnknown(t *testing.T) {
	assert.Equal(t, "weird", SeverityColor("weird"))
	assert.Equal(t, "weird", PriorityColor("weird"))
	assert.Equal(t, "weird", SlotStatusColor("weird"))
}

func TestTable_RendersHeaders(t *testing.T) {
	u, out, _ := newTestUI()

	table := u.Table([]string{"ID", "Title"})
	_ = table.Append([]string{"abc", "Landing page"})
	_ = table.Render()

	assert.Contains(t, out.String(), "Landing page")
}
