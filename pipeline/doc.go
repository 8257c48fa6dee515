// Package pipeline runs one conversational turn as a fixed sequence of
// stages: normalize the input, translate it to English, generate an answer
// over session history, translate back, and optionally synthesize speech.
// The first stage failure stops the run; the result always carries whatever
// was computed before the failure.
package pipeline
