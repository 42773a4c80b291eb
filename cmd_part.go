package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"zealdisk/disk"
)

// parseSizeClass accepts a size label such as 1MiB, 1mib or 1M.
func parseSizeClass(s string) (int, error) {
	s = strings.TrimSpace(s)
	if idx, ok := disk.SizeClassIndex(s); ok {
		return idx, nil
	}
	for i, l := range disk.SizeClassLabels() {
		if strings.EqualFold(l, s) || strings.EqualFold(strings.TrimSuffix(l, "iB"), s) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q (valid: %s)", disk.ErrInvalidSizeClass, s, strings.Join(disk.SizeClassLabels(), ", "))
}

func newPartCmd(a *app) *cobra.Command {
	partCmd := &cobra.Command{
		Use:   "part",
		Short: "Create and delete ZealFS partitions",
	}

	var sizesDisk string
	sizesCmd := &cobra.Command{
		Use:   "sizes",
		Short: "List the partition sizes that fit in the largest free space",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, d, err := a.lookup(sizesDisk)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !d.StagedHasMBR() {
				return fmt.Errorf("%s: %w", d.Name, disk.ErrNoMBR)
			}
			if d.FreeSlot() < 0 {
				fmt.Fprintln(out, "No free partition found on this disk")
				return nil
			}
			pl := d.Placement()
			fmt.Fprintf(out, "Address: 0x%08x\n", uint64(pl.Start)*disk.SectorSize)
			if pl.Fit == disk.FitNone {
				fmt.Fprintln(out, "No size available")
				return nil
			}
			for _, l := range disk.SizeClassLabels()[:pl.Classes] {
				fmt.Fprintf(out, "  %s\n", l)
			}
			return nil
		},
	}
	sizesCmd.Flags().StringVar(&sizesDisk, "disk", "", "disk name, path or index")
	_ = sizesCmd.MarkFlagRequired("disk")
	partCmd.AddCommand(sizesCmd)

	var (
		createDisk, createSize string
		createDryRun           bool
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ZealFS v2 partition in the largest free space",
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := parseSizeClass(createSize)
			if err != nil {
				return err
			}
			reg, d, err := a.lookup(createDisk)
			if err != nil {
				return err
			}
			if !d.StagedHasMBR() {
				return fmt.Errorf("%s: %w", d.Name, disk.ErrNoMBR)
			}
			slot := d.FreeSlot()
			if slot < 0 {
				return fmt.Errorf("%s: %w", d.Name, disk.ErrNoFreeSlot)
			}
			pl := d.Placement()
			if idx >= pl.Classes {
				labels := disk.SizeClassLabels()
				if pl.Classes == 0 {
					return fmt.Errorf("%s: no room for a %s partition", d.Name, labels[idx])
				}
				return fmt.Errorf("%s: %s does not fit, largest size is %s", d.Name, labels[idx], labels[pl.Classes-1])
			}
			if err := d.Allocate(pl.Start, idx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Partition %d: ZealFS, %s at 0x%08x\n",
				slot, disk.FormatSize(disk.SizeClassBytes(idx)), uint64(pl.Start)*disk.SectorSize)
			return a.commit(out, reg, d, createDryRun)
		},
	}
	createCmd.Flags().StringVar(&createDisk, "disk", "", "disk name, path or index")
	createCmd.Flags().StringVar(&createSize, "size", "", "partition size (e.g. 64KiB, 1MiB, 4GiB)")
	createCmd.Flags().BoolVar(&createDryRun, "dry-run", false, "show what would be written")
	_ = createCmd.MarkFlagRequired("disk")
	_ = createCmd.MarkFlagRequired("size")
	partCmd.AddCommand(createCmd)

	var (
		deleteDisk   string
		deleteSlot   int
		deleteDryRun bool
	)
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a partition from the MBR",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, d, err := a.lookup(deleteDisk)
			if err != nil {
				return err
			}
			if err := d.Delete(deleteSlot); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !d.Dirty() {
				fmt.Fprintf(out, "Partition %d is already empty\n", deleteSlot)
				return nil
			}
			fmt.Fprintf(out, "Partition %d: deleted\n", deleteSlot)
			return a.commit(out, reg, d, deleteDryRun)
		},
	}
	deleteCmd.Flags().StringVar(&deleteDisk, "disk", "", "disk name, path or index")
	deleteCmd.Flags().IntVar(&deleteSlot, "slot", -1, "partition slot (0-3)")
	deleteCmd.Flags().BoolVar(&deleteDryRun, "dry-run", false, "show what would be written")
	_ = deleteCmd.MarkFlagRequired("disk")
	_ = deleteCmd.MarkFlagRequired("slot")
	partCmd.AddCommand(deleteCmd)

	return partCmd
}

func newMBRCmd(a *app) *cobra.Command {
	mbrCmd := &cobra.Command{
		Use:   "mbr",
		Short: "Master Boot Record utilities",
	}

	var (
		initDisk   string
		initDryRun bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write an empty partition table to a disk without one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, d, err := a.lookup(initDisk)
			if err != nil {
				return err
			}
			if err := d.InitMBR(); err != nil {
				return fmt.Errorf("%s: %w", d.Name, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Disk %s: empty MBR\n", d.Name)
			return a.commit(out, reg, d, initDryRun)
		},
	}
	initCmd.Flags().StringVar(&initDisk, "disk", "", "disk name, path or index")
	initCmd.Flags().BoolVar(&initDryRun, "dry-run", false, "show what would be written")
	_ = initCmd.MarkFlagRequired("disk")
	mbrCmd.AddCommand(initCmd)

	return mbrCmd
}
