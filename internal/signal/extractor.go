package signal

// HandSignal is the normalized control signal derived from one hand.
// X and Y are in [-1,1] with the camera image mirrored so moving a hand to
// the viewer's right moves the signal right. Pinch is the normalized
// thumb-to-index distance in [0,1]. When Present is false the other fields
// hold stale values and must not be read.
type HandSignal struct {
	Present bool
	X       float64
	Y       float64
	Pinch   float64
}

// FaceSignal is the normalized facial expression signal. Bilateral
// categories are averaged into a single score.
type FaceSignal struct {
	Present   bool
	Smile     float64
	MouthOpen float64
	BrowDown  float64
}

// Frame is one published input snapshot: everything downstream consumers
// read during a render frame. It is copied by value, never shared mutably,
// and may be read across several consecutive render frames when the
// detection cadence is lower than the render rate.
type Frame struct {
	Left        HandSignal
	Right       HandSignal
	Face        FaceSignal
	Spectrum    []byte
	TimestampMs float64
}

// Pinch normalization: thumb-to-index distances at or under 2% of image
// size read as fully pinched, at or over 17% as fully open.
const (
	pinchMin   = 0.02
	pinchRange = 0.15
)

// ExtractHand converts one raw hand to its control signal.
func ExtractHand(h Hand) HandSignal {
	if len(h.Points) < NumLandmarks {
		return HandSignal{}
	}

	wrist := h.Points[Wrist]
	dist := distance(h.Points[ThumbTip], h.Points[IndexTip])

	return HandSignal{
		Present: true,
		// Mirror X so the visual moves with the hand as seen on screen,
		// and flip Y so up is positive.
		X:     (1-wrist.X)*2 - 1,
		Y:     -(wrist.Y*2 - 1),
		Pinch: clamp01((dist - pinchMin) / pinchRange),
	}
}

// ExtractFace converts the blendshape table to a face signal. Bilateral
// pairs are averaged; jawOpen stands alone.
func ExtractFace(f *Face) FaceSignal {
	if f == nil {
		return FaceSignal{}
	}
	return FaceSignal{
		Present:   true,
		Smile:     (f.BlendshapeScore(CatSmileLeft) + f.BlendshapeScore(CatSmileRight)) / 2,
		MouthOpen: f.BlendshapeScore(CatJawOpen),
		BrowDown:  (f.BlendshapeScore(CatBrowDownLeft) + f.BlendshapeScore(CatBrowDownRight)) / 2,
	}
}

// Extract converts a raw detection into a published frame. Hands are
// assigned by handedness label; if the detector reports two hands with the
// same label the later one wins. Zero detected hands leaves both signals
// absent.
func Extract(d Detection) Frame {
	frame := Frame{
		Spectrum:    d.Spectrum,
		TimestampMs: d.TimestampMs,
	}

	for _, h := range d.Hands {
		sig := ExtractHand(h)
		if !sig.Present {
			continue
		}
		switch h.Handedness {
		case "Left":
			frame.Left = sig
		case "Right":
			frame.Right = sig
		}
	}

	frame.Face = ExtractFace(d.Face)
	return frame
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
