// Package core defines the svgen data model and the pieces of the client
// that do not touch the network.
//
// # Requests
//
// Requests are built with [BuildGenerateRequest] and [BuildVectorizeRequest],
// which validate the payload before it can be sent:
//
//	req, err := core.BuildGenerateRequest(core.GenerateInput{
//	    Model:  "arrow-preview",
//	    Prompt: "A rocket icon",
//	})
//
// Raw JSON payloads are checked with [ValidateRequest] (closed: unknown fields
// are rejected) and [ValidateResponse] (open: unknown fields are preserved).
//
// # Streaming
//
// Streaming endpoints are read to completion and decoded with [DecodeSSE]:
//
//	for _, ev := range core.DecodeSSE(body) {
//	    if ev.IsDone() {
//	        break
//	    }
//	    fmt.Println(ev.Event, ev.Data)
//	}
//
// # Errors
//
// Every failure maps to one sentinel ([ErrConfigInvalid], [ErrConfigCorrupt],
// [ErrSchema], [ErrTimeout], [ErrNetwork], [ErrRemote], [ErrHTTP],
// [ErrRequestFailed]) and can be named with [KindOf]. [RequestFailedError]
// also unwraps to the error of its last attempt:
//
//	if errors.Is(err, core.ErrRequestFailed) && errors.Is(err, core.ErrTimeout) {
//	    // every attempt timed out
//	}
package core
