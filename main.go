// artisan - intervention calendar and invoice reminders for craftspeople
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.

package main

import (
	"github.com/manav03panchal/artisan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.Exit(err)
	}
}
