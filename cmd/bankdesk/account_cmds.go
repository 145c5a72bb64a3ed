package main

import (
	"fmt"

	"bankdesk/internal/dto"
	"bankdesk/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Open accounts for the selected customer",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a savings or loan account",
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

		accountType, _ := cmd.Flags().GetString("type")
		subType, _ := cmd.Flags().GetString("sub-type")
		branch, _ := cmd.Flags().GetString("branch")

		var account *models.Account
		switch accountType {
		case models.AccountTypeSavings:
			balance, err := decimalFlag(cmd, "balance")
			if err != nil {
				return err
			}
			limit, err := decimalFlag(cmd, "transfer-limit")
			if err != nil {
				return err
			}
			form := dto.SavingsAccountForm{
				AccSubType:    subType,
				Balance:       balance,
				TransferLimit: limit,
				BranchCode:    branch,
			}
			account, err = a.workspace.CreateSavingsAccount(cmd.Context(), form)
			if err != nil {
				return err
			}
		case models.AccountTypeLoan:
			amount, err := decimalFlag(cmd, "loan-amount")
			if err != nil {
				return err
			}
			rate, err := decimalFlag(cmd, "rate")
			if err != nil {
				return err
			}
			duration, _ := cmd.Flags().GetInt("duration")
			form := dto.LoanAccountForm{
				AccSubType:      subType,
				TotalLoanAmount: amount,
				RateOfInterest:  rate,
				LoanDuration:    duration,
				BranchCode:      branch,
			}
			account, err = a.workspace.CreateLoanAccount(cmd.Context(), form)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("--type must be %q or %q", models.AccountTypeSavings, models.AccountTypeLoan)
		}

		fmt.Printf("Opened %s account %d\n", accountType, account.AcctNum)
		fmt.Println("Selection closed; run \"bankdesk customer select\" to continue with a customer")
		return nil
	},
}

var depositCmd = &cobra.Command{
	Use:   "deposit <acctNum> <amount>",
	Short: "Deposit into a savings account of the selected customer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransaction(cmd, args, "deposit")
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <acctNum> <amount>",
	Short: "Withdraw from a savings account of the selected customer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransaction(cmd, args, "withdraw")
	},
}

func runTransaction(cmd *cobra.Command, args []string, action string) error {
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

	var acctNum int64
	if _, err := fmt.Sscanf(args[0], "%d", &acctNum); err != nil {
		return fmt.Errorf("invalid account number %q", args[0])
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[1])
	}
	detail, _ := cmd.Flags().GetString("detail")

	var txn *models.Transaction
	if action == "deposit" {
		txn, err = a.workspace.Deposit(cmd.Context(), acctNum, amount, detail)
	} else {
		txn, err = a.workspace.Withdraw(cmd.Context(), acctNum, amount, detail)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Transaction %d applied to account %d\n", txn.TxnID, acctNum)
	if acct := currentAccount(a, acctNum); acct != nil {
		fmt.Printf("New balance: %s\n", acct.Balance)
	}
	return nil
}

// currentAccount reads the refetched balance out of the workspace snapshot.
func currentAccount(a *app, acctNum int64) *models.Account {
	snap := a.workspace.Snapshot()
	if snap.Customer == nil {
		return nil
	}
	return snap.Customer.AccountByNumber(acctNum)
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q", name, raw)
	}
	return value, nil
}

func init() {
	accountCreateCmd.Flags().String("type", "", "account type: savings or loan")
	accountCreateCmd.Flags().String("sub-type", "regular", "account sub-type")
	accountCreateCmd.Flags().String("branch", "", "branch code")
	accountCreateCmd.Flags().String("balance", "", "opening balance (savings)")
	accountCreateCmd.Flags().String("transfer-limit", "", "transfer limit (savings)")
	accountCreateCmd.Flags().String("loan-amount", "", "total loan amount (loan)")
	accountCreateCmd.Flags().String("rate", "", "rate of interest (loan)")
	accountCreateCmd.Flags().Int("duration", 0, "loan duration in months")

	depositCmd.Flags().String("detail", "", "transaction note")
	withdrawCmd.Flags().String("detail", "", "transaction note")

	accountCmd.AddCommand(accountCreateCmd)
	rootCmd.AddCommand(accountCmd, depositCmd, withdrawCmd)
}
