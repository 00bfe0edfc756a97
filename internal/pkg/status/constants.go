package status

//Status represents recording processing state
type Status int

const (
	// Uploaded - audio stored, transcription not requested
	Uploaded Status = iota + 1
	// Transcribing - pipeline is running
	Transcribing
	// Complete - final state, transcript ready
	Complete
	// Failed - final state, error set
	Failed
)

var (
	statusName = map[Status]string{Uploaded: "uploaded", Transcribing: "transcribing",
		Complete: "complete", Failed: "failed"}
	nameStatus = map[string]Status{"uploaded": Uploaded, "transcribing": Transcribing,
		"complete": Complete, "failed": Failed}
)

func (st Status) String() string {
	return statusName[st]
}

// From returns status obj from string
func From(st string) Status {
	return nameStatus[st]
}
