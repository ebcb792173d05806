package utils

import (
	"time"

	"github.com/briandowns/spinner"
	"github.com/common-nighthawk/go-figure"
)

var loading = spinner.New(spinner.CharSets[14], 100*time.Millisecond)

// DrawBanner prints the application name
func DrawBanner() {
	figure.NewColorFigure("cost-doctor", "", "green", true).Print()
}

// StartSpinner shows a spinner with the given message until StopSpinner is called
func StartSpinner(message string) {
	loading.Suffix = " " + message
	loading.Start()
}

func StopSpinner() {
	loading.Stop()
}
