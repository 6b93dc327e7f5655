package canvas

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scvi-aria/deko/internal/domain"
)

func TestCanvas_RecordsShapesInOrder(t *testing.T) {
	c := New(domain.DefaultSize)
	c.Rect(0, 0, 10, 10).Fill(0xFF0000)
	c.RoundRect(5, 5, 20, 20, 4).FillAlpha(0x00FF00, 0.5).Outline(0x0000FF, 2)
	c.Path().MoveTo(0, 0).LineTo(1, 1).QuadTo(2, 2, 3, 3).Close().Fill(0x111111)

	shapes := c.Shapes()
	require.Len(t, shapes, 3)
	assert.Equal(t, KindRect, shapes[0].Kind)
	assert.Equal(t, KindRoundRect, shapes[1].Kind)
	assert.Equal(t, 0.5, shapes[1].Paint.Alpha)
	assert.Equal(t, 2.0, shapes[1].Line.Width)
	assert.Equal(t, KindPath, shapes[2].Kind)
	assert.Len(t, shapes[2].Path, 4)
	assert.Equal(t, OpQuad, shapes[2].Path[2].Op)
}

func TestCanvas_AlphaIsClamped(t *testing.T) {
	c := New(domain.DefaultSize)
	c.Rect(0, 0, 1, 1).FillAlpha(0, 1.7)
	c.Rect(0, 0, 1, 1).OutlineAlpha(0, 1, -0.2)

	shapes := c.Shapes()
	assert.Equal(t, 1.0, shapes[0].Paint.Alpha)
	assert.Equal(t, 0.0, shapes[1].Line.Alpha)
}

func TestCanvas_TextIsNFCNormalized(t *testing.T) {
	c := New(domain.DefaultSize)
	decomposed := "Cre\u0300me bru\u0302le\u0301e"
	c.Text(decomposed, 0, 0, 12)

	shapes := c.Shapes()
	assert.Equal(t, "Cr\u00e8me br\u00fbl\u00e9e", shapes[0].Text)
}

func TestFrame_DescribeAndTexts(t *testing.T) {
	c := New(domain.Size{Width: 100, Height: 50})
	c.Text("Order Received!", 50, 10, 28).Strong()
	c.Circle(10, 10, 5).Fill(0xABCDEF)

	f := NewFrame(c, domain.StageReceived, 250*time.Millisecond)
	assert.Equal(t, []string{"Order Received!"}, f.Texts())
	assert.Equal(t, int64(250), f.ElapsedMS)

	var buf bytes.Buffer
	require.NoError(t, f.Describe(&buf))
	assert.Contains(t, buf.String(), "frame RECEIVED +250ms 100x50 shapes=2")
	assert.Contains(t, buf.String(), "fill=#ABCDEF/1.00")
}

func TestQRPlaceholder_DeterministicPerURL(t *testing.T) {
	draw := func(url string) []Shape {
		c := New(domain.DefaultSize)
		c.QRPlaceholder(100, 100, 210, url, 0x1A1A1A)
		return c.Shapes()
	}

	a := draw("https://deko.example/menu")
	b := draw("https://deko.example/menu")
	other := draw("https://other.example")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)
	// background + 3 finders of 3 squares each, then modules
	assert.Greater(t, len(a), 10)
}

func TestStringHash_Wraps(t *testing.T) {
	assert.Equal(t, int32(0), stringHash(""))
	assert.Equal(t, int32(97), stringHash("a"))
	assert.Equal(t, int32(3105), stringHash("ab"))
}

func TestRecorder_Lifecycle(t *testing.T) {
	r := NewRecorder()
	_, ok := r.Last()
	assert.False(t, ok)

	require.NoError(t, r.Open(domain.DefaultSize))
	size, opened := r.Opened()
	assert.True(t, opened)
	assert.Equal(t, domain.DefaultSize, size)

	require.NoError(t, r.Present(Frame{Stage: domain.StageReady}))
	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, domain.StageReady, last.Stage)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Present(Frame{}), ErrClosed)
	assert.Equal(t, 1, r.Closes())
	assert.Equal(t, 1, r.Presents())
}

func TestRecorder_OpenError(t *testing.T) {
	r := &Recorder{OpenErr: errors.New("no display")}
	assert.EqualError(t, r.Open(domain.DefaultSize), "no display")
}

func TestNextModuleSeed_RoundsLikeFloat64(t *testing.T) {
	seed := int64(stringHash("https://example.com/menu"))
	require.Equal(t, int64(1330229760), seed)

	// exact int64 arithmetic would give 1654454841, 1378490494, 1054278111
	want := []int64{1654454784, 755147264, 1132145152, 1044189696}
	for i, w := range want {
		seed = nextModuleSeed(seed)
		assert.Equal(t, w, seed, "step %d", i)
	}
}
