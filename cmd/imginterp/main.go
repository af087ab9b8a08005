// Command imginterp predicts a missing acquisition for one resolution
// tag by per-pixel linear-in-time interpolation across the tag's
// donor time series (spec §4.J).
//
// Grounded on original_source/src/utils/imginterp/main.cpp: every -i
// image is a (tag, date) donor; --target-date names the date to
// predict; donors get validity masks from the common mask option
// grammar. The actual parsing/run logic lives in cliutil.RunInterpJob,
// shared with cmd/imginterpjob's per-line batch runner.
package main

import (
	"fmt"
	"os"

	"github.com/fusionkit/imgfusion/internal/cliutil"
	"github.com/fusionkit/imgfusion/internal/driver"
	"github.com/fusionkit/imgfusion/internal/logctx"
)

func main() {
	if len(os.Args) == 1 {
		fmt.Println("Usage: imginterp -i <img> [-i <img> ...] --target-date=<date> [options]")
		return
	}
	out, err := cliutil.RunInterpJob(driver.Default(), os.Args[1:])
	if err != nil {
		logctx.Default(false).Error("imginterp", "error", err)
		os.Exit(1)
	}
	fmt.Println(out)
}
