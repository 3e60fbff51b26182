package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Mukul-Bhagat/AttendanceMark-sub003/core"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with email and password",
	Long: `Authenticate against the AttendMark server.

When the account belongs to several organizations, the memberships are
listed and one must be chosen before a session exists.

Examples:
  attendmark login --email user@example.com
  attendmark login --email user@example.com --password secret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureClient(cmd.Context(), false); err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" {
			return fmt.Errorf("--email is required")
		}
		if password == "" {
			var err error
			password, err = promptPassword("Password: ")
			if err != nil {
				return err
			}
		}

		result, err := client.Sessions.Login(cmd.Context(), core.Credentials{Email: email, Password: password})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		if result.NeedsSelection() {
			prefix, err := chooseOrganization(result.Organizations)
			if err != nil {
				return err
			}
			if err := client.Sessions.SelectOrganization(cmd.Context(), prefix); err != nil {
				return fmt.Errorf("organization selection failed: %w", err)
			}
		}

		session := client.Sessions.Session()
		fmt.Printf("Logged in as %s (%s)\n", session.User.Email, session.User.Role)
		if session.User.MustResetPassword {
			fmt.Println("Your password must be reset before continuing; run 'attendmark passwd'.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and remove the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureClient(cmd.Context(), false); err != nil {
			return err
		}
		client.Sessions.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated identity and its capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureClient(cmd.Context(), true); err != nil {
			return err
		}

		session := client.Sessions.Session()
		u := session.User
		fmt.Printf("User:         %s %s <%s>\n", u.Profile.FirstName, u.Profile.LastName, u.Email)
		fmt.Printf("Role:         %s\n", u.Role)
		fmt.Printf("Organization: %s\n", u.CollectionPrefix)
		if u.MustResetPassword {
			fmt.Println("Password:     reset required")
		}

		caps := session.Capabilities()
		fmt.Printf("Capabilities: superAdmin=%t companyAdmin=%t manager=%t sessionAdmin=%t endUser=%t platformOwner=%t\n",
			caps.SuperAdmin, caps.CompanyAdmin, caps.Manager, caps.SessionAdmin, caps.EndUser, caps.PlatformOwner)
		return nil
	},
}

var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List the organizations this account belongs to",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureClient(cmd.Context(), true); err != nil {
			return err
		}

		orgs, err := client.Sessions.Organizations(cmd.Context())
		if err != nil {
			return err
		}

		current := client.Sessions.Session().User.CollectionPrefix
		for _, org := range orgs {
			marker := " "
			if org.Prefix == current {
				marker = "*"
			}
			fmt.Printf("%s %-20s %-14s %s\n", marker, org.Prefix, org.Role, org.OrganizationName)
		}
		return nil
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch <prefix>",
	Short: "Re-scope the session to another organization",
	Long: `Re-scope the current session to another organization.

All organization-scoped data fetched so far becomes invalid once the
switch succeeds; a failed switch leaves the current session untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureClient(cmd.Context(), true); err != nil {
			return err
		}

		if err := client.Sessions.SwitchOrganization(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("switch failed: %w", err)
		}
		fmt.Printf("Switched to %s\n", args[0])
		return nil
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Replace a provisional password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureClient(cmd.Context(), true); err != nil {
			return err
		}

		oldPassword, err := promptPassword("Current password: ")
		if err != nil {
			return err
		}
		newPassword, err := promptPassword("New password: ")
		if err != nil {
			return err
		}

		if err := client.Sessions.ForceResetPassword(cmd.Context(), oldPassword, newPassword); err != nil {
			return fmt.Errorf("password reset failed: %w", err)
		}
		fmt.Println("Password updated.")
		return nil
	},
}

var attendCmd = &cobra.Command{
	Use:   "attend <session-code>",
	Short: "Record attendance for a session",
	Long: `Record attendance for a session using its code.

The request is stamped with this device's durable identifier; pass
--lat/--lng when the session requires a location check.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureClient(cmd.Context(), true); err != nil {
			return err
		}

		var lat, lng *float64
		if cmd.Flags().Changed("lat") {
			v, _ := cmd.Flags().GetFloat64("lat")
			lat = &v
		}
		if cmd.Flags().Changed("lng") {
			v, _ := cmd.Flags().GetFloat64("lng")
			lng = &v
		}

		if err := client.Sessions.MarkAttendance(cmd.Context(), args[0], lat, lng); err != nil {
			return fmt.Errorf("could not record attendance: %w", err)
		}
		fmt.Println("Attendance recorded.")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when omitted)")

	attendCmd.Flags().Float64("lat", 0, "latitude of the device")
	attendCmd.Flags().Float64("lng", 0, "longitude of the device")
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func chooseOrganization(orgs []core.OrganizationMembership) (string, error) {
	fmt.Println("This account belongs to several organizations:")
	for i, org := range orgs {
		fmt.Printf("  [%d] %s (%s, %s)\n", i+1, org.OrganizationName, org.Prefix, org.Role)
	}
	fmt.Print("Select an organization: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	index, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || index < 1 || index > len(orgs) {
		return "", fmt.Errorf("invalid selection")
	}
	return orgs[index-1].Prefix, nil
}
