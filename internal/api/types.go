package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Photo describes a catalogued file in a transport-friendly format.
type Photo struct {
	ID            int64    `json:"id"`
	Path          string   `json:"path"`
	Filename      string   `json:"filename"`
	CaptureTime   string   `json:"captureTime,omitempty"`
	CaptureSource string   `json:"captureSource,omitempty"`
	CameraModel   string   `json:"cameraModel,omitempty"`
	LensModel     string   `json:"lensModel,omitempty"`
	ISO           *int     `json:"iso,omitempty"`
	Orientation   *int     `json:"orientation,omitempty"`
	Aperture      *float64 `json:"aperture,omitempty"`
	FocalLength   *float64 `json:"focalLength,omitempty"`
	ExposureTime  string   `json:"exposureTime,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Location      string   `json:"location,omitempty"`
	Status        string   `json:"status"`
	FileSize      int64    `json:"fileSize"`
	ProcessedAt   string   `json:"processedAt,omitempty"`
	ErrorKind     string   `json:"errorKind,omitempty"`
	ErrorMessage  string   `json:"errorMessage,omitempty"`
}

// TimelineEntry is one day at one location.
type TimelineEntry struct {
	Day          string  `json:"day"`
	Location     string  `json:"location"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	PhotoCount   int     `json:"photoCount"`
	FirstCapture string  `json:"firstCapture"`
}

// Stats summarizes the catalog.
type Stats struct {
	Counts  map[string]int `json:"counts"`
	Total   int            `json:"total"`
	WithGPS int            `json:"withGps"`
	Located int            `json:"located"`
	Places  int            `json:"places"`
}

// Run mirrors one ingest run.
type Run struct {
	ID           string `json:"id"`
	Root         string `json:"root"`
	StartedAt    string `json:"startedAt"`
	FinishedAt   string `json:"finishedAt,omitempty"`
	Seen         int    `json:"seen"`
	Skipped      int    `json:"skipped"`
	Processed    int    `json:"processed"`
	Updated      int    `json:"updated"`
	Failed       int    `json:"failed"`
	Located      int    `json:"located"`
	BytesHashed  int64  `json:"bytesHashed"`
	Interrupted  bool   `json:"interrupted"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// TimelineResponse wraps timeline entries.
type TimelineResponse struct {
	Entries []TimelineEntry `json:"entries"`
}

// PhotoListResponse wraps photos for one timeline entry.
type PhotoListResponse struct {
	Day      string  `json:"day"`
	Location string  `json:"location"`
	Photos   []Photo `json:"photos"`
}

// RunListResponse wraps recent runs.
type RunListResponse struct {
	Runs []Run `json:"runs"`
}

// ErrorResponse is the body of every non-2xx API reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
