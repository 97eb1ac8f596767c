package domain

import "errors"

// ErrInvalidGeometry is returned for zero or negative image or element dimensions.
var ErrInvalidGeometry = errors.New("invalid geometry")

// ErrInvalidPen is returned when a stroke is started with a non-positive width.
var ErrInvalidPen = errors.New("invalid pen width")

// ErrInvalidMode is returned when a stroke mode name is not recognised.
var ErrInvalidMode = errors.New("invalid stroke mode")

// ErrUndecodable is returned when an uploaded or captured image cannot be decoded.
var ErrUndecodable = errors.New("image could not be decoded")

// ErrCameraUnavailable is returned when a camera cannot be acquired (denied, missing, unreachable).
var ErrCameraUnavailable = errors.New("camera unavailable")

// ErrCameraClosed is returned when capturing without an open camera stream.
var ErrCameraClosed = errors.New("camera is not open")

// ErrEmptyExpression is returned when either side of an equivalence check is blank.
var ErrEmptyExpression = errors.New("fill in both sides")

// ErrBoardNotFound is returned when a board ID cannot be found in the registry.
var ErrBoardNotFound = errors.New("board not found")

// ErrStaleLoad is returned when an image decode completes after a newer one was applied.
var ErrStaleLoad = errors.New("stale image load discarded")

// ErrSyntax is returned when an expression cannot be parsed.
var ErrSyntax = errors.New("syntax error")

// ErrSolutionNotFound is returned when an archived solution ID does not exist.
var ErrSolutionNotFound = errors.New("solution not found")
