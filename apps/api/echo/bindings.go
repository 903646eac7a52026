package echoapi

import "github.com/trezcool/studyroom/core/note"

type (
	UploadResponse struct {
		Note note.Item `json:"note"`
		View note.View `json:"view"`
	}

	DeleteResponse struct {
		Deleted bool      `json:"deleted"`
		View    note.View `json:"view"`
	}

	SubjectsResponse struct {
		Subjects []string `json:"subjects"`
	}

	UsageResponse struct {
		Namespace string `json:"namespace"`
		Guest     bool   `json:"guest"`
		Bytes     int64  `json:"bytes"`
		Human     string `json:"human"`
	}
)
