// Package signal converts raw detection output (hand landmarks, face
// blendshape scores, audio spectra) into the normalized semantic signals the
// rest of the engine consumes.
package signal

import "math"

// Hand landmark indices following the MediaPipe hand landmarker convention.
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point is a normalized landmark coordinate. X and Y are in [0,1] image
// space; Z is depth relative to the wrist.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is one detected hand as published by the detection collaborator.
// Handedness is exactly "Left" or "Right".
type Hand struct {
	Points     []Point `json:"points"`
	Handedness string  `json:"handedness"`
	Score      float64 `json:"score"`
}

// Blendshape is a named facial activation score in [0,1].
type Blendshape struct {
	CategoryName string  `json:"categoryName"`
	Score        float64 `json:"score"`
}

// Face is the detected face's blendshape score table.
type Face struct {
	Blendshapes []Blendshape `json:"blendshapes"`
}

// Detection is one raw frame from the detection collaborator. Spectrum is
// the byte-resolution magnitude spectrum of the live audio signal, empty
// when no audio source is active. TimestampMs must strictly advance.
type Detection struct {
	Hands       []Hand  `json:"hands"`
	Face        *Face   `json:"face,omitempty"`
	Spectrum    []byte  `json:"spectrum,omitempty"`
	TimestampMs float64 `json:"timestampMs"`
}

// Blendshape category names used by the extractor. They follow the ARKit
// naming the face landmarker emits.
const (
	CatSmileLeft     = "mouthSmileLeft"
	CatSmileRight    = "mouthSmileRight"
	CatJawOpen       = "jawOpen"
	CatBrowDownLeft  = "browDownLeft"
	CatBrowDownRight = "browDownRight"
)

// BlendshapeScore looks up a category by name. Absent categories yield 0,
// never an error: detectors differ in which categories they emit.
func (f *Face) BlendshapeScore(name string) float64 {
	if f == nil {
		return 0
	}
	for _, b := range f.Blendshapes {
		if b.CategoryName == name {
			return b.Score
		}
	}
	return 0
}

func distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
