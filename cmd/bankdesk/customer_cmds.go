package main

import (
	"fmt"

	"bankdesk/internal/customer"
	"bankdesk/internal/dto"
	"bankdesk/internal/models"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Select and manage customers",
}

var customerSelectCmd = &cobra.Command{
	Use:   "select <custId>",
	Short: "Select a customer and load its record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireSession(); err != nil {
			return err
		}

		if err := a.workspace.Select(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSnapshot(a.workspace.Snapshot())
		return nil
	},
}

var customerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current workspace state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireSession(); err != nil {
			return err
		}

		if err := a.workspace.RestoreSelection(cmd.Context()); err != nil {
			return err
		}
		printSnapshot(a.workspace.Snapshot())
		return nil
	},
}

var customerSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search customers by name, mobile, or email",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireSession(); err != nil {
			return err
		}

		req := dto.AdvancedSearchRequest{}
		req.FirstName, _ = cmd.Flags().GetString("first-name")
		req.LastName, _ = cmd.Flags().GetString("last-name")
		req.Mobile, _ = cmd.Flags().GetString("mobile")
		req.Email, _ = cmd.Flags().GetString("email")

		results, err := a.workspace.Search(cmd.Context(), req)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No customers matched")
			return nil
		}
		for _, c := range results {
			fmt.Printf("%-8s %-30s %s\n", c.CustID, c.DisplayName(), c.EmailID)
		}
		return nil
	},
}

var customerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a customer and select it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireSession(); err != nil {
			return err
		}

		created, err := a.workspace.Create(cmd.Context(), customerFormFromFlags(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("Created customer %s (%s)\n", created.CustID, created.DisplayName())
		return nil
	},
}

var customerUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the selected customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireSession(); err != nil {
			return err
		}

		if err := a.workspace.RestoreSelection(cmd.Context()); err != nil {
			return err
		}
		updated, err := a.workspace.Update(cmd.Context(), customerFormFromFlags(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("Updated customer %s\n", updated.CustID)
		return nil
	},
}

var customerDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the selected customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireSession(); err != nil {
			return err
		}

		if err := a.workspace.RestoreSelection(cmd.Context()); err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			snap := a.workspace.Snapshot()
			name := "the selected customer"
			if snap.Customer != nil {
				name = snap.Customer.DisplayName()
			}
			confirmed := false
			prompt := &survey.Confirm{Message: fmt.Sprintf("Delete %s?", name), Default: false}
			if err := askOne(prompt, &confirmed); err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Aborted")
				return nil
			}
		}

		if err := a.workspace.Delete(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Customer deleted")
		return nil
	},
}

var customerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the customer selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.workspace.ClearSelection(); err != nil {
			return err
		}
		fmt.Println("Selection cleared")
		return nil
	},
}

func customerFormFromFlags(cmd *cobra.Command) dto.CustomerForm {
	form := dto.CustomerForm{}
	form.FirstName, _ = cmd.Flags().GetString("first-name")
	form.LastName, _ = cmd.Flags().GetString("last-name")
	form.EmailID, _ = cmd.Flags().GetString("email")
	form.Address1, _ = cmd.Flags().GetString("address1")
	form.Address2, _ = cmd.Flags().GetString("address2")
	form.Phone, _ = cmd.Flags().GetString("phone")
	form.Mobile, _ = cmd.Flags().GetString("mobile")
	form.DOB, _ = cmd.Flags().GetString("dob")
	form.MaritalStatus, _ = cmd.Flags().GetString("marital-status")
	form.ZIPCode, _ = cmd.Flags().GetString("zip")
	form.CityName, _ = cmd.Flags().GetString("city")
	form.StateName, _ = cmd.Flags().GetString("state")
	form.CountryName, _ = cmd.Flags().GetString("country")
	return form
}

func addCustomerFormFlags(cmd *cobra.Command) {
	cmd.Flags().String("first-name", "", "first name")
	cmd.Flags().String("last-name", "", "last name")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("address1", "", "address line 1")
	cmd.Flags().String("address2", "", "address line 2")
	cmd.Flags().String("phone", "", "phone number")
	cmd.Flags().String("mobile", "", "mobile number")
	cmd.Flags().String("dob", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().String("marital-status", "", "marital status")
	cmd.Flags().String("zip", "", "ZIP code")
	cmd.Flags().String("city", "", "city")
	cmd.Flags().String("state", "", "state")
	cmd.Flags().String("country", "", "country")
}

func printSnapshot(snap customer.Snapshot) {
	fmt.Printf("Phase: %s\n", snap.Phase)
	if snap.Err != nil {
		fmt.Printf("Error: %v\n", snap.Err)
	}
	if snap.Customer != nil {
		printCustomer(snap.Customer)
	}
}

func printCustomer(c *models.Customer) {
	fmt.Printf("Customer %s: %s <%s>\n", c.CustID, c.DisplayName(), c.EmailID)
	if c.CityName != "" || c.CountryName != "" {
		fmt.Printf("  %s %s %s %s\n", c.ZIPCode, c.CityName, c.StateName, c.CountryName)
	}
	for _, acct := range c.Accounts {
		if acct.IsSavings() {
			fmt.Printf("  savings %d  balance %s  limit %s\n", acct.AcctNum, acct.Balance, acct.TransferLimit)
		} else {
			fmt.Printf("  loan    %d  amount %s  rate %s%%  %d months\n",
				acct.AcctNum, acct.TotalLoanAmount, acct.RateOfInterest, acct.LoanDuration)
		}
	}
}

func init() {
	customerSearchCmd.Flags().String("first-name", "", "filter by first name")
	customerSearchCmd.Flags().String("last-name", "", "filter by last name")
	customerSearchCmd.Flags().String("mobile", "", "filter by mobile number")
	customerSearchCmd.Flags().String("email", "", "filter by email")

	addCustomerFormFlags(customerCreateCmd)
	addCustomerFormFlags(customerUpdateCmd)
	customerDeleteCmd.Flags().Bool("yes", false, "skip confirmation")

	customerCmd.AddCommand(
		customerSelectCmd,
		customerShowCmd,
		customerSearchCmd,
		customerCreateCmd,
		customerUpdateCmd,
		customerDeleteCmd,
		customerClearCmd,
	)
	rootCmd.AddCommand(customerCmd)
}
