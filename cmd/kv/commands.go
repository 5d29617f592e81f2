package kv

import (
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/kvfacade/lib/value"
	"github.com/spf13/cobra"
	"io"
)

var (
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := kvStorage.Keys().Await()
			if err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := kvStorage.Get(args[0]).Await()
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), v)
		},
	}
	createCmd = &cobra.Command{
		Use:   "create [key] [items]",
		Short: "Creates or replaces the entry for a key",
		Long:  "Creates or replaces the entry for a key. Items are parsed as JSON when possible and stored as plain text otherwise. Without items the entry is empty.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var items any
			if len(args) == 2 {
				items = parseArg(args[1])
			}
			if _, err := kvStorage.Create(args[0], items).Await(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created successfully")
			return nil
		},
	}
	eraseCmd = &cobra.Command{
		Use:   "erase [key]",
		Short: "Removes the entry for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := kvStorage.Erase(args[0]).Await(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "erased successfully")
			return nil
		},
	}
	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Removes all entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := kvStorage.Reset().Await(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reset successfully")
			return nil
		},
	}
	insertCmd = &cobra.Command{
		Use:   "insert [key] [value]",
		Short: "Merges a value into the entry for a key",
		Long:  "Merges a value into the entry for a key: strings are concatenated, records are unioned and arrays are appended to. Values of incompatible shapes are rejected.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := kvStorage.Insert(args[0], parseArg(args[1])).Await(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "inserted successfully")
			return nil
		},
	}
	updateCmd = &cobra.Command{
		Use:   "update [key] [criteria] [record]",
		Short: "Replaces the record with the same id in a collection",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := kvStorage.Update(args[0], value.Decode(args[1]), value.Decode(args[2])).Await()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key=%s, updated=%t\n", args[0], updated)
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:   "remove [id] [key]",
		Short: "Removes the record with the given id from a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := kvStorage.Remove(parseArg(args[0]), args[1]).Await()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key=%s, removed=%t\n", args[1], removed)
			return nil
		},
	}
	findCmd = &cobra.Command{
		Use:   "find [key] [params]",
		Short: "Finds a value or record within the entry for a key",
		Long:  "Finds a value or record within the entry for a key. Params starting with { are a record filter, anything else is compared as text.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := kvStorage.Find(args[0], value.Decode(args[1])).Await()
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), v)
		},
	}
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseArg returns the JSON value of arg, or arg itself if it isn't valid JSON
func parseArg(arg string) any {
	var v any
	if err := json.Unmarshal([]byte(arg), &v); err != nil {
		return arg
	}
	return v
}

// printValue writes v as JSON, strings are written as they are
func printValue(w io.Writer, v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
