package camera

// Point is a 2-D coordinate inside the camera frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RectROI is an axis-aligned rectangle used for wrong-parking zones.
// Width and Height must be non-negative.
type RectROI struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// WrongParkingROI is a rectangular parking-violation zone. The rectangle is
// nested under "roi" on the wire.
type WrongParkingROI struct {
	ID  string  `json:"id"`
	ROI RectROI `json:"roi"`
}

// GateROI is a line-crossing detector: TripLine is the line a vehicle
// crosses, DirLine the reference direction used to classify the crossing as
// entry or exit. Type is a free-form lane classification tag.
type GateROI struct {
	Type     string  `json:"type"`
	ID       string  `json:"id"`
	TripLine []Point `json:"trip_line"`
	DirLine  []Point `json:"dir_line"`
}

// Config is the per-camera configuration document. CameraID is unique across
// the store. IDs inside Gate and WrongParking are unique by convention only;
// callers that submit duplicate IDs violate a precondition and element-scoped
// operations will then act on the first (replace) or all (delete) matches.
type Config struct {
	CameraID     string            `json:"camera_id"`
	RTSPURL      string            `json:"rtsp_url"`
	Algorithm    string            `json:"algorithm"`
	Gate         []GateROI         `json:"gate"`
	WrongParking []WrongParkingROI `json:"wrong_parking"`
}
