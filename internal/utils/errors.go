package utils

import "fmt"

// ImageProcessingError annotates a failure with the stage it occurred in.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error {
	return e.Err
}
