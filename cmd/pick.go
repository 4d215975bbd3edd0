package cmd

import (
	"fmt"

	"dirhop/internal/tui"
)

// runPicker shows the interactive picker and prints the chosen absolute
// path to stdout. A dismissal prints nothing and exits zero so shell
// wrappers can treat empty output as "stay put".
func runPicker(args []string) error {
	s, err := openSession(args)
	if err != nil {
		return err
	}
	defer s.close()

	selected, err := tui.Run(tui.Config{
		Cache: s.cache,
		Roots: s.roots,
	})
	if err != nil {
		return err
	}
	if selected == nil {
		return nil
	}
	fmt.Println(selected.Path)
	return nil
}
