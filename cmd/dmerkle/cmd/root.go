package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *command) initRootCmd() {
	cmd := &cobra.Command{
		Use:   "root FILE",
		Short: "Print the Merkle root of a file's blocks",
		Long: `Split FILE into blocks of --block-size bytes, build a Merkle tree over them,
and print the root hash in hexadecimal.

With --expect-root, exit with an error unless the root matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cmd, c.config.GetString(optionNameVerbosity))
			if err != nil {
				return err
			}

			s, err := c.splitFile(log, args[0])
			if err != nil {
				return err
			}

			root := s.Tree.RootHex()

			if exp := c.config.GetString(optionNameExpectRoot); exp != "" {
				if _, err := hex.DecodeString(exp); err != nil {
					return fmt.Errorf("invalid %s: %w", optionNameExpectRoot, err)
				}
				if !strings.EqualFold(exp, root) {
					return fmt.Errorf("root mismatch: expected %s, computed %s", exp, root)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), root)
			return nil
		},
	}

	cmd.Flags().String(optionNameExpectRoot, "", "hexadecimal root the file must produce")

	c.root.AddCommand(cmd)
}
