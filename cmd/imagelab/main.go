package main

import (
	"github.com/aarontoms/Image-Filtering-and-Segmentation/cmd/imagelab/cmd"
)

func main() {
	cmd.Execute()
}
