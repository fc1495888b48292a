// Package mediatest provides in-memory stand-ins for the video pipeline's
// external collaborators: a recording [writer.Backend], a configurable frame
// source, and an audio/video merger that copies its input.
package mediatest
