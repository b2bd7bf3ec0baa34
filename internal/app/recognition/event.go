package recognition

// Options configures a capture session.
type Options struct {
	Lang                        string // BCP 47 language tag
	InterimResults              bool   // Deliver partial results while speaking
	Continuous                  bool   // Keep listening across pauses in speech
	RequiresOnDeviceRecognition bool   // Never leave the device for inference
}

// Result is one candidate transcription of the current utterance.
type Result struct {
	Transcript string
}

// ResultEvent is one push from the engine. Results are ranked, best first.
type ResultEvent struct {
	SessionID string // Set by the controller on delivery
	Results   []Result
}

// Top returns the top-ranked candidate of the first result entry.
func (e ResultEvent) Top() (string, bool) {
	if len(e.Results) == 0 || e.Results[0].Transcript == "" {
		return "", false
	}
	return e.Results[0].Transcript, true
}

// NewResultEvent builds an event from ranked candidate texts.
func NewResultEvent(candidates ...string) ResultEvent {
	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, Result{Transcript: c})
	}
	return ResultEvent{Results: results}
}
