// Package testutil provides shared test doubles and fixtures.
//
//   - MockTranscriber: testify mock of api.Transcriber
//   - MockProvider: testify mock of provider.TranscriptionProvider that can also load a model
//   - MockTranscriptionService / MockHealthService: mocks of the HTTP service layer
//   - WAV fixtures: silent and tone clips written with the real encoder
//   - NewObservedLogger: a zap logger whose entries can be asserted on
//
// # Usage
//
//	func TestPipeline(t *testing.T) {
//	    transcriber := testutil.NewMockTranscriber(t)
//	    transcriber.ExpectTranscribe(model.TranscriptionResult{Language: "en", Text: "hi"}, nil)
//	    ...
//	    transcriber.AssertExpectations(t)
//	}
package testutil
