package server

// LockMessage locks or unlocks the gesture surface.
type LockMessage struct {
	Type   string `json:"type" jsonschema:"enum=lock"`
	Locked bool   `json:"locked"`
}

// FrameStepMessage steps one frame; negative directions step back.
type FrameStepMessage struct {
	Type      string `json:"type" jsonschema:"enum=frame_step"`
	Direction int    `json:"direction" jsonschema:"minimum=-1,maximum=1"`
}
