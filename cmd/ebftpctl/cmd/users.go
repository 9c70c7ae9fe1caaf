package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tkjenll/ebftpd/pkg/site"
)

var delUserCmd = &cobra.Command{
	Use:   "deluser NAME",
	Short: "Delete a user and kick their logins",
	Args:  cobra.ExactArgs(1),
	RunE: runWithApp(func(a *app, args []string) error {
		kicked, err := a.site.DelUser(args[0])
		if err != nil {
			return err
		}

		fmt.Println(site.DelUserReply(args[0], kicked))
		return nil
	}),
}

var addUserCmd = &cobra.Command{
	Use:   "adduser NAME GROUP",
	Short: "Add a user with GROUP as their primary group",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(a *app, args []string) error {
		u, err := a.site.AddUser(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Added user %s (uid %d, gid %d).\n", u.Name, u.ID, u.PrimaryGID)
		return nil
	}),
}

var gaddUserCmd = &cobra.Command{
	Use:   "gadduser GROUP NAME",
	Short: "Add a user to GROUP",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(a *app, args []string) error {
		u, err := a.site.GAddUser(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Added user %s (uid %d) to group %s.\n", u.Name, u.ID, args[0])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(delUserCmd)
	rootCmd.AddCommand(addUserCmd)
	rootCmd.AddCommand(gaddUserCmd)
}
