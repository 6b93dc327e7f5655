package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scvi-aria/deko/internal/domain"
	"github.com/scvi-aria/deko/internal/vendor"
)

func TestRenderFrame_Idle(t *testing.T) {
	cfg := vendor.Default()
	cfg.WebsiteURL = "https://example.com/menu"

	f, err := RenderFrame(cfg, domain.DefaultSize, domain.StageIdle, 0, domain.Order{Number: "001"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageIdle, f.Stage)

	texts := f.Texts()
	assert.Contains(t, texts, "Waiting for orders...")
	assert.Contains(t, texts, "Scan to view our menu")
	assert.Contains(t, texts, "Deko")
}

func TestRenderFrame_Preparing(t *testing.T) {
	order := domain.Order{Number: "042", Items: []string{"Latte", "Scone"}}

	f, err := RenderFrame(vendor.Default(), domain.DefaultSize, domain.StagePreparing, 2500*time.Millisecond, order)
	require.NoError(t, err)
	assert.Equal(t, domain.StagePreparing, f.Stage)
	assert.Equal(t, int64(2500), f.ElapsedMS)

	texts := f.Texts()
	assert.Contains(t, texts, "Brewing your coffee...")
	assert.Contains(t, texts, order.Summary())
	assert.NotContains(t, texts, "Scan to view our menu")
}

func TestRenderFrame_EveryStageReachable(t *testing.T) {
	for _, key := range []string{"coffee", "pizza", "florist"} {
		cfg := vendor.Default()
		cfg.VendorType = key
		for _, stage := range domain.Sequence {
			f, err := RenderFrame(cfg, domain.DefaultSize, stage, 0, domain.Order{Number: "7"})
			require.NoError(t, err, "%s %s", key, stage)
			assert.Equal(t, stage, f.Stage)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	out, err := execute(t, "render", "--vendor", "pizza", "--stage", "packaging")
	require.NoError(t, err)
	assert.Contains(t, out, "Pizza Shop (pizza)")
	assert.Contains(t, out, "frame PACKAGING +0ms 1200x800")
}

func TestRenderCommand_InvalidStage(t *testing.T) {
	_, err := execute(t, "render", "--stage", "BAKING")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "render", "--elapsed", "-1s")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
