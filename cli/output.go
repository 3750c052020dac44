package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"

	"videoninja/models"
)

func printDialog(d *models.Dialog) {
	if d == nil {
		return
	}
	title := color.New(color.FgGreen, color.Bold)
	switch d.Title {
	case "Error", "Asset Not Available":
		title = color.New(color.FgRed, color.Bold)
	}
	fmt.Printf("%s %s\n", title.Sprint(d.Title+":"), d.Message)
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, color.YellowString(format, args...))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
