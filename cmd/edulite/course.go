package main

import (
	"fmt"
	"strconv"

	"edulite-cli/internal/api"
	"edulite-cli/internal/edu"

	"github.com/spf13/cobra"
)

// course command
var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Browse and join courses",
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CourseList")
		if err != nil {
			return err
		}
		defer a.Close()

		var opts api.ListOptions
		opts.Page, _ = cmd.Flags().GetInt("page")

		page, err := a.ListCourses(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if len(page.Results) == 0 {
			fmt.Println("No courses found.")
			return nil
		}
		for _, course := range page.Results {
			active := " "
			if course.IsActive {
				active = "A"
			}
			fmt.Printf("#%-5d %s %-9s %-12s %s\n",
				course.ID, active, course.Visibility, course.Subject, course.Title)
		}
		fmt.Printf("\nPage %d of %d (%d total)\n", page.CurrentPage, page.TotalPages, page.Count)
		return nil
	},
}

var courseViewCmd = &cobra.Command{
	Use:   "view COURSE_ID",
	Short: "View a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}

		a, err := newApp("CourseView")
		if err != nil {
			return err
		}
		defer a.Close()

		course, err := a.Course(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("%s (#%d, %s)\n", course.Title, course.ID, course.Visibility)
		if course.Subject != "" {
			fmt.Printf("Subject:  %s\n", course.Subject)
		}
		if !course.StartDate.IsZero() {
			fmt.Printf("Runs:     %s to %s\n",
				course.StartDate.Format("2006-01-02"), course.EndDate.Format("2006-01-02"))
		}
		fmt.Printf("Active:   %v\n", course.IsActive)
		if course.Outline != "" {
			fmt.Printf("\n%s\n", course.Outline)
		}
		return nil
	},
}

// courseInput builds a CourseInput from the create/edit flags, on top of an
// existing course for edits.
func courseInput(cmd *cobra.Command, base *edu.Course) edu.CourseInput {
	in := edu.CourseInput{Visibility: edu.CourseVisibility("public")}
	if base != nil {
		in = edu.CourseInput{
			Title:             base.Title,
			Outline:           base.Outline,
			Language:          base.Language,
			Country:           base.Country,
			Subject:           base.Subject,
			Visibility:        base.Visibility,
			IsActive:          base.IsActive,
			AllowJoinRequests: base.AllowJoinRequests,
		}
	}
	if cmd.Flags().Changed("title") {
		in.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("outline") {
		in.Outline, _ = cmd.Flags().GetString("outline")
	}
	if cmd.Flags().Changed("subject") {
		in.Subject, _ = cmd.Flags().GetString("subject")
	}
	if cmd.Flags().Changed("language") {
		in.Language, _ = cmd.Flags().GetString("language")
	}
	if cmd.Flags().Changed("country") {
		in.Country, _ = cmd.Flags().GetString("country")
	}
	if cmd.Flags().Changed("visibility") {
		visibility, _ := cmd.Flags().GetString("visibility")
		in.Visibility = edu.CourseVisibility(visibility)
	}
	if cmd.Flags().Changed("active") {
		in.IsActive, _ = cmd.Flags().GetBool("active")
	}
	if cmd.Flags().Changed("allow-join-requests") {
		in.AllowJoinRequests, _ = cmd.Flags().GetBool("allow-join-requests")
	}
	return in
}

var courseNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a course",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CourseCreate")
		if err != nil {
			return err
		}
		defer a.Close()

		course, err := a.CreateCourse(cmd.Context(), courseInput(cmd, nil))
		if err != nil {
			return err
		}
		fmt.Printf("Created course #%d: %s\n", course.ID, course.Title)
		return nil
	},
}

var courseEditCmd = &cobra.Command{
	Use:   "edit COURSE_ID",
	Short: "Update a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}

		a, err := newApp("CourseUpdate")
		if err != nil {
			return err
		}
		defer a.Close()

		course, err := a.Course(cmd.Context(), id)
		if err != nil {
			return err
		}
		course, err = a.UpdateCourse(cmd.Context(), id, courseInput(cmd, course))
		if err != nil {
			return err
		}
		fmt.Printf("Updated course #%d: %s\n", course.ID, course.Title)
		return nil
	},
}

var courseRmCmd = &cobra.Command{
	Use:   "rm COURSE_ID",
	Short: "Delete a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}

		a, err := newApp("CourseDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteCourse(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted course #%d\n", id)
		return nil
	},
}

var courseEnrollCmd = &cobra.Command{
	Use:   "enroll COURSE_ID",
	Short: "Enroll in a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}

		a, err := newApp("CourseEnroll")
		if err != nil {
			return err
		}
		defer a.Close()

		membership, err := a.Enroll(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("Enrolled in course #%d as %s (%s)\n", membership.CourseID, membership.Role, membership.Status)
		return nil
	},
}

var courseMembersCmd = &cobra.Command{
	Use:   "members COURSE_ID",
	Short: "List course members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}

		a, err := newApp("CourseMembers")
		if err != nil {
			return err
		}
		defer a.Close()

		var opts api.ListOptions
		opts.Page, _ = cmd.Flags().GetInt("page")

		page, err := a.Memberships(cmd.Context(), id, opts)
		if err != nil {
			return err
		}
		for _, m := range page.Results {
			fmt.Printf("#%-5d %-20s %-10s %s\n", m.UserID, m.Username, m.Role, m.Status)
		}
		fmt.Printf("\nPage %d of %d (%d total)\n", page.CurrentPage, page.TotalPages, page.Count)
		return nil
	},
}

var courseInviteCmd = &cobra.Command{
	Use:   "invite COURSE_ID USER_ID",
	Short: "Invite a user to a course",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}
		userID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid user id: %s", args[1])
		}
		role, _ := cmd.Flags().GetString("role")

		a, err := newApp("CourseInvite")
		if err != nil {
			return err
		}
		defer a.Close()

		membership, err := a.InviteMember(cmd.Context(), courseID, userID, role)
		if err != nil {
			return err
		}
		fmt.Printf("Invited %s to course #%d as %s\n", membership.Username, membership.CourseID, membership.Role)
		return nil
	},
}

// module command operates on a course's modules.
var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Manage course modules",
}

var moduleListCmd = &cobra.Command{
	Use:   "list COURSE_ID",
	Short: "List a course's modules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}

		a, err := newApp("ModuleList")
		if err != nil {
			return err
		}
		defer a.Close()

		modules, err := a.Modules(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(modules) == 0 {
			fmt.Println("No modules in this course.")
			return nil
		}
		for _, m := range modules {
			title := m.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("#%-5d %3d. %-30s %s #%d\n", m.ID, m.Order, title, m.ContentType, m.ObjectID)
		}
		return nil
	},
}

// moduleInput builds a CourseModuleInput from the add/set flags, on top of an
// existing module for edits.
func moduleInput(cmd *cobra.Command, base *edu.CourseModule) edu.CourseModuleInput {
	var in edu.CourseModuleInput
	if base != nil {
		in = edu.CourseModuleInput{
			Title:       base.Title,
			Order:       base.Order,
			ContentType: base.ContentType,
			ObjectID:    base.ObjectID,
		}
	}
	if cmd.Flags().Changed("title") {
		in.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("order") {
		in.Order, _ = cmd.Flags().GetInt("order")
	}
	if cmd.Flags().Changed("content-type") {
		in.ContentType, _ = cmd.Flags().GetString("content-type")
	}
	if cmd.Flags().Changed("object-id") {
		in.ObjectID, _ = cmd.Flags().GetInt("object-id")
	}
	return in
}

var moduleAddCmd = &cobra.Command{
	Use:   "add COURSE_ID",
	Short: "Add a module to a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}

		a, err := newApp("ModuleCreate")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.CreateModule(cmd.Context(), id, moduleInput(cmd, nil))
		if err != nil {
			return err
		}
		fmt.Printf("Added module #%d (%s #%d) to course #%d\n", m.ID, m.ContentType, m.ObjectID, m.CourseID)
		return nil
	},
}

var moduleSetCmd = &cobra.Command{
	Use:   "set COURSE_ID MODULE_ID",
	Short: "Update a course module",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}
		moduleID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid module id: %s", args[1])
		}

		a, err := newApp("ModuleUpdate")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.Module(cmd.Context(), courseID, moduleID)
		if err != nil {
			return err
		}
		m, err = a.UpdateModule(cmd.Context(), courseID, moduleID, moduleInput(cmd, m))
		if err != nil {
			return err
		}
		fmt.Printf("Updated module #%d in course #%d\n", m.ID, m.CourseID)
		return nil
	},
}

var moduleRmCmd = &cobra.Command{
	Use:   "rm COURSE_ID MODULE_ID",
	Short: "Remove a module from a course",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}
		moduleID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid module id: %s", args[1])
		}

		a, err := newApp("ModuleDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteModule(cmd.Context(), courseID, moduleID); err != nil {
			return err
		}
		fmt.Printf("Removed module #%d from course #%d\n", moduleID, courseID)
		return nil
	},
}

// setMembershipStatus runs a membership PATCH shared by approve and deny.
func setMembershipStatus(cmd *cobra.Command, args []string, operation, status string) error {
	courseID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid course id: %s", args[0])
	}
	membershipID, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid membership id: %s", args[1])
	}

	a, err := newApp(operation)
	if err != nil {
		return err
	}
	defer a.Close()

	m, err := a.UpdateMembership(cmd.Context(), courseID, membershipID, status, "")
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s in course #%d\n", m.Username, m.Status, m.CourseID)
	return nil
}

var courseApproveCmd = &cobra.Command{
	Use:   "approve COURSE_ID MEMBERSHIP_ID",
	Short: "Approve a pending membership",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMembershipStatus(cmd, args, "MemberApprove", edu.MembershipEnrolled)
	},
}

var courseDenyCmd = &cobra.Command{
	Use:   "deny COURSE_ID MEMBERSHIP_ID",
	Short: "Deny a pending membership",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMembershipStatus(cmd, args, "MemberDeny", edu.MembershipDenied)
	},
}

var courseRemoveMemberCmd = &cobra.Command{
	Use:   "remove COURSE_ID MEMBERSHIP_ID",
	Short: "Remove a member from a course",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id: %s", args[0])
		}
		membershipID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid membership id: %s", args[1])
		}

		a, err := newApp("MemberRemove")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveMember(cmd.Context(), courseID, membershipID); err != nil {
			return err
		}
		fmt.Printf("Removed membership #%d from course #%d\n", membershipID, courseID)
		return nil
	},
}

// profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Profile")
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := a.Profile(cmd.Context())
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("bio") || cmd.Flags().Changed("occupation") ||
			cmd.Flags().Changed("country") || cmd.Flags().Changed("language") {
			in := edu.ProfileInput{
				Bio:               profile.Bio,
				Occupation:        profile.Occupation,
				Country:           profile.Country,
				PreferredLanguage: profile.PreferredLanguage,
			}
			if cmd.Flags().Changed("bio") {
				in.Bio, _ = cmd.Flags().GetString("bio")
			}
			if cmd.Flags().Changed("occupation") {
				in.Occupation, _ = cmd.Flags().GetString("occupation")
			}
			if cmd.Flags().Changed("country") {
				in.Country, _ = cmd.Flags().GetString("country")
			}
			if cmd.Flags().Changed("language") {
				in.PreferredLanguage, _ = cmd.Flags().GetString("language")
			}
			profile, err = a.UpdateProfile(cmd.Context(), in)
			if err != nil {
				return err
			}
		}

		fmt.Printf("Username:  %s\n", profile.Username)
		fmt.Printf("Country:   %s\n", profile.Country)
		fmt.Printf("Language:  %s\n", profile.PreferredLanguage)
		fmt.Printf("Occupation: %s\n", profile.Occupation)
		fmt.Printf("Friends:   %d\n", profile.FriendsCount)
		if profile.Bio != "" {
			fmt.Printf("\n%s\n", profile.Bio)
		}
		return nil
	},
}

func init() {
	courseListCmd.Flags().Int("page", 0, "Page number")
	courseMembersCmd.Flags().Int("page", 0, "Page number")
	courseInviteCmd.Flags().String("role", "student", "Membership role")
	for _, c := range []*cobra.Command{courseNewCmd, courseEditCmd} {
		c.Flags().String("title", "", "Course title")
		c.Flags().String("outline", "", "Course outline")
		c.Flags().String("subject", "", "Subject")
		c.Flags().String("language", "", "Language")
		c.Flags().String("country", "", "Country")
		c.Flags().String("visibility", "public", "Visibility (public, private, restricted)")
		c.Flags().Bool("active", true, "Whether the course is active")
		c.Flags().Bool("allow-join-requests", false, "Allow join requests")
	}

	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseViewCmd)
	courseCmd.AddCommand(courseNewCmd)
	courseCmd.AddCommand(courseEditCmd)
	courseCmd.AddCommand(courseRmCmd)
	courseCmd.AddCommand(courseEnrollCmd)
	courseCmd.AddCommand(courseMembersCmd)
	courseCmd.AddCommand(courseInviteCmd)
	courseCmd.AddCommand(courseApproveCmd)
	courseCmd.AddCommand(courseDenyCmd)
	courseCmd.AddCommand(courseRemoveMemberCmd)

	for _, c := range []*cobra.Command{moduleAddCmd, moduleSetCmd} {
		c.Flags().String("title", "", "Module title")
		c.Flags().Int("order", 0, "Display order within the course")
		c.Flags().String("content-type", "", "Linked content as app_label.model")
		c.Flags().Int("object-id", 0, "ID of the linked content object")
	}
	moduleCmd.AddCommand(moduleListCmd)
	moduleCmd.AddCommand(moduleAddCmd)
	moduleCmd.AddCommand(moduleSetCmd)
	moduleCmd.AddCommand(moduleRmCmd)
	courseCmd.AddCommand(moduleCmd)

	profileCmd.Flags().String("bio", "", "Profile bio")
	profileCmd.Flags().String("occupation", "", "Occupation")
	profileCmd.Flags().String("country", "", "Country")
	profileCmd.Flags().String("language", "", "Preferred language")

	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(profileCmd)
}
