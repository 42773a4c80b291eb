package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"zealdisk/disk"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newDiskCmd(a *app) *cobra.Command {
	diskCmd := &cobra.Command{
		Use:   "disk",
		Short: "Disk related utilities (read-only)",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the disks that can hold ZealFS partitions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  %-3s  %-32s  %-4s  %-9s  %s\n", "#", "Disk", "MBR", "Free slot", "Path")
			if len(reg.Disks()) == 0 {
				fmt.Fprintln(out, "  <none detected>")
				return nil
			}
			for i, d := range reg.Disks() {
				free := "-"
				if d.FreeSlot() >= 0 {
					free = fmt.Sprint(d.FreeSlot())
				}
				fmt.Fprintf(out, "  %-3d  %-32s  %-4s  %-9s  %s\n", i, d.Label(), yesNo(d.HasMBR), free, d.Path)
			}
			return nil
		},
	}
	diskCmd.AddCommand(listCmd)

	var showDisk string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the partition table of a disk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, d, err := a.lookup(showDisk)
			if err != nil {
				return err
			}
			printDisk(cmd.OutOrStdout(), d)
			return nil
		},
	}
	showCmd.Flags().StringVar(&showDisk, "disk", "", "disk name, path or index")
	_ = showCmd.MarkFlagRequired("disk")
	diskCmd.AddCommand(showCmd)

	return diskCmd
}

func partitionRow(slot int, p disk.Partition) string {
	if !p.Active {
		return fmt.Sprintf("  %-4d  %-24s", slot, "-")
	}
	typ := fmt.Sprintf("%s (0x%02X)", disk.FSTypeName(p.Type), p.Type)
	return fmt.Sprintf("  %-4d  %-24s  0x%08x  %12s", slot, typ, uint64(p.StartLBA)*disk.SectorSize, disk.FormatSize(p.SizeBytes()))
}

func printDisk(out io.Writer, d *disk.Disk) {
	fmt.Fprintf(out, "Disk:  %s\n", d.Name)
	fmt.Fprintf(out, "Path:  %s\n", d.Path)
	fmt.Fprintf(out, "Size:  %s (%d sectors)\n", disk.FormatSize(d.SizeBytes), d.SizeSectors())
	if !d.StagedHasMBR() {
		fmt.Fprintln(out, "MBR:   none (create one with `zealdisk mbr init`)")
		return
	}
	fmt.Fprintln(out, "MBR:   yes")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-4s  %-24s  %-10s  %12s\n", "Slot", "Type", "Start", "Size")
	for i, p := range d.StagedPartitions() {
		fmt.Fprintln(out, partitionRow(i, p))
	}
	fmt.Fprintln(out)

	run := d.LargestFreeRun()
	fmt.Fprintf(out, "Largest free space: %s at 0x%08x\n",
		disk.FormatSize(uint64(run.Sectors)*disk.SectorSize), uint64(run.Start)*disk.SectorSize)
	if d.FreeSlot() < 0 {
		fmt.Fprintln(out, "Next partition: no free slot")
		return
	}
	pl := d.Placement()
	if pl.Fit == disk.FitNone {
		fmt.Fprintln(out, "Next partition: no size available")
		return
	}
	labels := disk.SizeClassLabels()
	fmt.Fprintf(out, "Next partition: slot %d at 0x%08x, %s to %s\n",
		d.FreeSlot(), uint64(pl.Start)*disk.SectorSize, labels[0], labels[pl.Classes-1])
}
