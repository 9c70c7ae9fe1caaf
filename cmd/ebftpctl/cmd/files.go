package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tkjenll/ebftpd/pkg/fs/fspath"
)

var uniqueLength int

var uniqueCmd = &cobra.Command{
	Use:   "unique DIR",
	Short: "Print an unused file name in DIR",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(a *app, args []string) error {
		dir, err := fspath.ParseVirtual(args[0])
		if err != nil {
			return err
		}

		p, err := a.files.UniqueFile(a.user, dir, uniqueLength)
		if err != nil {
			return err
		}

		fmt.Println(p)
		return nil
	}),
}

var statCmd = &cobra.Command{
	Use:   "stat PATH",
	Short: "Show a path as the file layer sees it",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(a *app, args []string) error {
		vpath, err := fspath.ParseVirtual(args[0])
		if err != nil {
			return err
		}

		st, err := a.files.Stat(a.user, vpath)
		if err != nil {
			return err
		}

		owner := "unknown"
		if o, ok := a.files.Owners().Lookup(st.Path()); ok {
			owner = fmt.Sprintf("%d:%d", o.UID, o.GID)
		}

		fmt.Printf("path:       %s\n", vpath)
		fmt.Printf("real:       %s\n", st.Path())
		fmt.Printf("size:       %d\n", st.Size())
		fmt.Printf("modified:   %s\n", st.ModTime().Format("2006-01-02 15:04:05"))
		fmt.Printf("type:       %s\n", fileType(st.IsRegularFile(), st.IsDirectory(), st.IsSymLink()))
		fmt.Printf("access:     %s\n", accessString(st.IsReadable(), st.IsWritable(), st.IsExecutable()))
		fmt.Printf("disk owner: %d:%d\n", st.UID(), st.GID())
		fmt.Printf("site owner: %s\n", owner)
		return nil
	}),
}

var incompleteCmd = &cobra.Command{
	Use:   "incomplete PATH",
	Short: "Report whether PATH looks like an upload in progress",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(a *app, args []string) error {
		vpath, err := fspath.ParseVirtual(args[0])
		if err != nil {
			return err
		}

		fmt.Println(a.files.IsIncomplete(a.files.Resolver().MakeReal(vpath)))
		return nil
	}),
}

func fileType(regular, dir, link bool) string {
	kind := "other"
	switch {
	case dir:
		kind = "directory"
	case regular:
		kind = "file"
	}

	if link {
		return "symlink to " + kind
	}
	return kind
}

func accessString(r, w, x bool) string {
	b := []byte("---")
	if r {
		b[0] = 'r'
	}
	if w {
		b[1] = 'w'
	}
	if x {
		b[2] = 'x'
	}
	return string(b)
}

func init() {
	uniqueCmd.Flags().IntVarP(&uniqueLength, "length", "l", 8, "length of the generated name")
	rootCmd.AddCommand(uniqueCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(incompleteCmd)
}
