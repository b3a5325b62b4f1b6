package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func (c *command) initVerifyCmd() {
	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Check whether a block belongs to a file at a given position",
		Long: `Split FILE into blocks of --block-size bytes, build a Merkle tree over them,
and check the contents of --block against the leaf at --index.

Exits with an error if the block does not match.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cmd, c.config.GetString(optionNameVerbosity))
			if err != nil {
				return err
			}

			blockPath := c.config.GetString(optionNameBlock)
			if blockPath == "" {
				return fmt.Errorf("--%s is required", optionNameBlock)
			}

			block, err := os.ReadFile(blockPath)
			if err != nil {
				return fmt.Errorf("failed to read block %s: %w", blockPath, err)
			}

			s, err := c.splitFile(log, args[0])
			if err != nil {
				return err
			}

			idx := c.config.GetInt(optionNameIndex)
			if idx < 0 || idx >= s.Tree.LeafCount() {
				return fmt.Errorf(
					"%s %d out of range: %s has %d blocks",
					optionNameIndex, idx, args[0], s.Tree.LeafCount(),
				)
			}

			if !s.Tree.Verify(idx, block) {
				return fmt.Errorf("block %s does not match block %d of %s", blockPath, idx, args[0])
			}

			log.Debug("Block verified", "idx", idx, "root", s.Tree.RootHex())
			fmt.Fprintf(cmd.OutOrStdout(), "OK: block %d matches\n", idx)
			return nil
		},
	}

	cmd.Flags().Int(optionNameIndex, 0, "zero-based position of the block within the file")
	cmd.Flags().String(optionNameBlock, "", "path to the candidate block contents")

	c.root.AddCommand(cmd)
}
