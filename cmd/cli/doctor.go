package cli

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/arnavsurve/browser-agent/pkg/driver"
	roddriver "github.com/arnavsurve/browser-agent/pkg/driver/rod"
	"github.com/fatih/color"
)

type DoctorCmd struct {
	BrowserBin string `help:"Browser executable to check instead of searching the system." type:"path" env:"BA_BROWSER_BIN"`
}

func (d *DoctorCmd) Run(g *Globals) error {
	tw := newTable(g.Out)
	fmt.Fprintf(tw, "go\t%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(tw, "drivers\t%s\n", strings.Join(driver.Names(), ", "))
	fmt.Fprintf(tw, "log level\t%s\n", g.LogLevel)

	_, envErr := os.Stat(".env")
	fmt.Fprintf(tw, ".env\t%s\n", presence(envErr == nil))

	var settings []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, envPrefix) {
			settings = append(settings, kv)
		}
	}
	sort.Strings(settings)
	for _, kv := range settings {
		key, val, _ := strings.Cut(kv, "=")
		if strings.Contains(strings.ToUpper(key), "SECRET") || strings.Contains(strings.ToUpper(key), "PASSWORD") {
			val = "********"
		}
		fmt.Fprintf(tw, "%s\t%s\n", key, val)
	}

	bin, found := d.BrowserBin, false
	if bin != "" {
		info, err := os.Stat(bin)
		found = err == nil && !info.IsDir()
	} else {
		bin, found = roddriver.BrowserAvailable()
	}
	fmt.Fprintf(tw, "browser\t%s %s\n", presence(found), bin)
	if err := tw.Flush(); err != nil {
		return err
	}

	if !found {
		return fmt.Errorf("no browser binary found; install Chrome or Chromium, or pass --browser-bin")
	}
	return nil
}

func presence(ok bool) string {
	if ok {
		return color.GreenString("found")
	}
	return color.YellowString("missing")
}
