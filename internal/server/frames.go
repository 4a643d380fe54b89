package server

// Frame is the JSON envelope exchanged on the /ws endpoint. The client
// opens with a spawn frame, then sends input and resize frames; the
// server answers with ready, output and finally exit (or error).
type Frame struct {
	Type string `json:"type"`

	// spawn (client -> server)
	Command []string `json:"command,omitempty"`
	Term    string   `json:"term,omitempty"`
	Cols    int      `json:"cols,omitempty"`
	Rows    int      `json:"rows,omitempty"`

	// input / output payload, base64-encoded on the wire
	Data []byte `json:"data,omitempty"`

	// ready / exit / error (server -> client)
	SessionID string `json:"session_id,omitempty"`
	Pid       int    `json:"pid,omitempty"`
	ExitCode  *int   `json:"exit_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Frame types.
const (
	FrameSpawn  = "spawn"
	FrameInput  = "input"
	FrameResize = "resize"
	FrameReady  = "ready"
	FrameOutput = "output"
	FrameExit   = "exit"
	FrameError  = "error"
)

func errorFrame(message string) Frame {
	return Frame{Type: FrameError, Error: message}
}
