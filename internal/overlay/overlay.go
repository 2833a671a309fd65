// Package overlay composes the live display frame: the camera view with
// detection boxes and labels, plus reference thumbnails for the current
// best matches.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	dimaging "github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"cardsight/internal/detect"
	"cardsight/internal/index"
	"cardsight/internal/match"
)

// Box pairs a detected region with the ranked candidates the matcher
// produced for it. Candidates may be nil while matching still lags
// behind detection.
type Box struct {
	Region     detect.Region
	Candidates []match.Candidate
}

// Renderer composes display frames. It reads reference images from the
// index for thumbnails and labels matches below the classification
// threshold as undefined.
type Renderer struct {
	idx           *index.Index
	displayHeight int
	threshold     float64
}

// NewRenderer builds a renderer over the reference index.
func NewRenderer(idx *index.Index, displayHeight int, threshold float64) *Renderer {
	return &Renderer{idx: idx, displayHeight: displayHeight, threshold: threshold}
}

var (
	weakColor   = colorful.Color{R: 0.9, G: 0.2, B: 0.2}
	strongColor = colorful.Color{R: 0.2, G: 0.9, B: 0.2}
	labelFg     = color.RGBA{255, 255, 255, 255}
	labelBg     = color.RGBA{0, 0, 0, 200}
)

// Compose renders the camera frame scaled to the display height, draws
// every box with a label, and appends thumbnails for the first box's
// candidates on the right. Works with zero boxes and with boxes whose
// candidates have not arrived yet.
func (r *Renderer) Compose(frame image.Image, boxes []Box) image.Image {
	fb := frame.Bounds()
	if fb.Dx() == 0 || fb.Dy() == 0 {
		return frame
	}
	scale := float64(r.displayHeight) / float64(fb.Dy())
	camW := int(float64(fb.Dx()) * scale)
	cam := dimaging.Resize(frame, camW, r.displayHeight, dimaging.Linear)

	var thumbs []image.Image
	if len(boxes) > 0 {
		thumbs = r.thumbnails(boxes[0].Candidates)
	}
	totalW := camW
	for _, t := range thumbs {
		totalW += t.Bounds().Dx()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, totalW, r.displayHeight))
	draw.Draw(canvas, cam.Bounds(), cam, image.Point{}, draw.Src)

	for _, b := range boxes {
		r.drawBox(canvas, b, scale)
	}

	x := camW
	for _, t := range thumbs {
		draw.Draw(canvas, t.Bounds().Add(image.Pt(x, 0)), t, image.Point{}, draw.Src)
		x += t.Bounds().Dx()
	}
	return canvas
}

// drawBox outlines one detection in a color blended from weak to strong
// by the top candidate's score, with the identification as a label.
func (r *Renderer) drawBox(canvas *image.RGBA, b Box, scale float64) {
	rect := image.Rect(
		int(float64(b.Region.Bounds.Min.X)*scale),
		int(float64(b.Region.Bounds.Min.Y)*scale),
		int(float64(b.Region.Bounds.Max.X)*scale),
		int(float64(b.Region.Bounds.Max.Y)*scale),
	).Intersect(canvas.Bounds())
	if rect.Empty() {
		return
	}

	label := "matching..."
	score := 0.0
	if len(b.Candidates) > 0 {
		top := b.Candidates[0]
		score = top.Score
		if top.Score < r.threshold {
			label = "undefined"
		} else {
			label = fmt.Sprintf("%s %.2f", top.CardID, top.Score)
		}
	}

	c := weakColor.BlendHsv(strongColor, clamp01(score))
	cr, cg, cb := c.RGB255()
	outline := color.RGBA{cr, cg, cb, 255}
	drawRect(canvas, rect, outline, 2)
	drawLabel(canvas, rect.Min.X+3, rect.Min.Y+13, label)
}

// thumbnails renders the reference images of the candidates: the top
// match at full display height, the runners-up at half height.
func (r *Renderer) thumbnails(candidates []match.Candidate) []image.Image {
	var out []image.Image
	for i, c := range candidates {
		card := r.idx.Get(c.CardID)
		if card == nil {
			continue
		}
		h := r.displayHeight
		if i > 0 {
			h /= 2
		}
		w := card.Image.Bounds().Dx() * h / card.Image.Bounds().Dy()
		thumb := dimaging.Resize(card.Image, w, h, dimaging.Linear)

		labeled := image.NewRGBA(image.Rect(0, 0, w, r.displayHeight))
		draw.Draw(labeled, thumb.Bounds(), thumb, image.Point{}, draw.Src)
		text := fmt.Sprintf("%s %.2f", card.Name, c.Score)
		if c.Score < r.threshold {
			text = "undefined"
		}
		drawLabel(labeled, 4, 14, text)
		out = append(out, labeled)
	}
	return out
}

// drawRect draws a rectangle outline of the given thickness.
func drawRect(img *image.RGBA, rect image.Rectangle, c color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		r := rect.Inset(t)
		if r.Empty() {
			return
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, r.Min.Y, c)
			img.SetRGBA(x, r.Max.Y-1, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.SetRGBA(r.Min.X, y, c)
			img.SetRGBA(r.Max.X-1, y, c)
		}
	}
}

// drawLabel renders text on a dark background strip so it stays legible
// over arbitrary frame content.
func drawLabel(img *image.RGBA, x, y int, text string) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	bg := image.Rect(x-2, y-11, x+w+2, y+4).Intersect(img.Bounds())
	draw.Draw(img, bg, &image.Uniform{labelBg}, image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{labelFg},
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
