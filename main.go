// zealdisk creates ZealFS v2 partitions in the MBR of small disks and disk images.
// Cobra CLI plus a tcell full-screen editor. Changes are staged in memory and only
// reach the disk when applied.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"zealdisk/disk"
)

func must(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, disk.ErrPermission) {
		fmt.Fprintln(os.Stderr, "zealdisk must be run as root/Administrator")
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(2)
}

// app carries what every command needs once the flags are parsed.
type app struct {
	flags       globalFlags
	cfg         Config
	in          io.Reader
	newPlatform func(images []string) disk.Platform
}

func newPlatform(images []string) disk.Platform {
	if len(images) > 0 {
		return disk.NewImagePlatform(images)
	}
	return disk.NewHostPlatform()
}

func (a *app) registry() (*disk.Registry, error) {
	reg := disk.NewRegistry(a.newPlatform(a.cfg.Images), a.cfg.MaxDisks)
	if err := reg.Refresh(); err != nil {
		return nil, err
	}
	return reg, nil
}

// lookup resolves id as a disk name, a path or an index from `disk list`.
func (a *app) lookup(id string) (*disk.Registry, *disk.Disk, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, nil, err
	}
	d, err := reg.Find(id)
	if err == nil {
		return reg, d, nil
	}
	if i, convErr := strconv.Atoi(id); convErr == nil && i >= 0 && i < len(reg.Disks()) {
		return reg, reg.Disks()[i], nil
	}
	return nil, nil, err
}

func (a *app) confirm(out io.Writer, question string) (bool, error) {
	if a.cfg.AssumeYes {
		return true, nil
	}
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// commit writes the staged changes of d after confirmation, unless dryRun is set.
func (a *app) commit(out io.Writer, reg *disk.Registry, d *disk.Disk, dryRun bool) error {
	if dryRun {
		fmt.Fprintln(out, "Dry run, nothing written.")
		return nil
	}
	ok, err := a.confirm(out, "Apply changes to disk? This action is permanent and cannot be undone.")
	if err != nil {
		return err
	}
	if !ok {
		d.Revert()
		fmt.Fprintln(out, "Aborted, nothing written.")
		return nil
	}
	if err := reg.WriteChanges(d); err != nil {
		return err
	}
	log.Infof("Changes written to %s", d.Path)
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "zealdisk",
		Short:         "ZealFS partition tool for disks and disk images",
		Long:          "List disks, inspect their MBR and create or delete ZealFS v2 partitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.flags.load(cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			return setupLogging(a.flags.quiet, a.flags.verbose, cfg.LogLevel)
		},
	}
	a.flags.addFlags(root.PersistentFlags())

	root.AddCommand(newDiskCmd(a))
	root.AddCommand(newPartCmd(a))
	root.AddCommand(newMBRCmd(a))
	root.AddCommand(newEditCmd(a))
	return root
}

func main() {
	a := &app{in: os.Stdin, newPlatform: newPlatform}
	must(newRootCmd(a).Execute())
}
