package shell

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/ostafen/gidefdisk/internal/bootcode"
	"github.com/ostafen/gidefdisk/internal/disk"
	"github.com/ostafen/gidefdisk/internal/logger"
	"github.com/ostafen/gidefdisk/internal/session"
)

// SaveFunc persists an encoded boot record.
type SaveFunc func(buf []byte) error

// Shell is the interactive command loop of the editor.
type Shell struct {
	s       *session.Session
	in      Prompter
	out     io.Writer
	log     *logger.Logger
	loaders bootcode.Loaders
	save    SaveFunc
}

func New(s *session.Session, in Prompter, out io.Writer, log *logger.Logger, loaders bootcode.Loaders, save SaveFunc) *Shell {
	return &Shell{
		s:       s,
		in:      in,
		out:     out,
		log:     log,
		loaders: loaders,
		save:    save,
	}
}

// errQuit stops the command loop.
var errQuit = errors.New("quit")

// Run reads commands until the operator quits, writes the table or input
// ends. Only a failed write is reported as an error.
func (sh *Shell) Run() error {
	for {
		line, err := sh.in.Prompt("Command (h for help): ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		err = sh.Exec(rune(line[0]))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Exec runs a single command. Operator mistakes are reported on the output
// and do not produce an error.
func (sh *Shell) Exec(cmd rune) error {
	var err error

	switch unicode.ToLower(cmd) {
	case 'b':
		err = sh.toggleBootable()
	case 'd':
		err = sh.deletePartition()
	case 'l':
		PrintTypes(sh.out)
	case 'm':
		PrintMethod(sh.out, sh.s.ToggleMethod())
	case 'n':
		err = sh.addPartition()
	case 'p':
		return PrintPartitions(sh.out, sh.s)
	case 'q':
		return errQuit
	case 't':
		err = sh.setType()
	case 'u':
		fmt.Fprintf(sh.out, "Changing display/entry units to %s\n\n", sh.s.CycleUnits())
	case 'v':
		PrintReport(sh.out, sh.s.Verify())
	case 'w':
		if err := sh.write(); err != nil {
			return err
		}
		return errQuit
	default:
		PrintMenu(sh.out)
	}

	if errors.Is(err, io.EOF) {
		return errQuit
	}
	if err != nil {
		sh.report(err)
	}
	return nil
}

func (sh *Shell) report(err error) {
	fmt.Fprintf(sh.out, "%s.\n\n", err)
}

func (sh *Shell) askNumber() (int, error) {
	line, err := sh.in.Prompt(fmt.Sprintf("Partition number (1-%d): ", disk.MaxEntries))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", disk.ErrIndexOutOfRange, strings.TrimSpace(line))
	}
	return n, nil
}

func (sh *Shell) toggleBootable() error {
	n, err := sh.askNumber()
	if err != nil {
		return err
	}
	if _, err := sh.s.ToggleBootable(n); err != nil {
		return err
	}
	fmt.Fprintln(sh.out)
	return nil
}

func (sh *Shell) deletePartition() error {
	n, err := sh.askNumber()
	if err != nil {
		return err
	}
	if err := sh.s.Delete(n); err != nil {
		return err
	}
	fmt.Fprintln(sh.out)
	return nil
}

func (sh *Shell) setType() error {
	n, err := sh.askNumber()
	if err != nil {
		return err
	}
	if n < 1 || n > disk.MaxEntries {
		return fmt.Errorf("%w: %d", disk.ErrIndexOutOfRange, n)
	}
	if sh.s.Table[n-1].IsEmpty() {
		return fmt.Errorf("%w: partition %d does not exist yet", disk.ErrSlotAlreadyEmpty, n)
	}

	for {
		line, err := sh.in.Prompt("Hex code (type L to list codes): ")
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)

		if strings.EqualFold(line, "l") {
			PrintTypes(sh.out)
			continue
		}

		code, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(line), "0x"), 16, 8)
		if err != nil {
			continue
		}

		t := disk.PartitionType(code)
		if err := sh.s.SetType(n, t); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "Changed system type of partition %d to %02x (%s)\n\n", n, uint8(t), t)
		return nil
	}
}

func (sh *Shell) addPartition() error {
	first, err := sh.s.FirstFreeSlot()
	if err != nil {
		fmt.Fprintln(sh.out, "The table is full. You must delete some partition first.")
		fmt.Fprintln(sh.out)
		return nil
	}

	line, err := sh.in.Prompt(fmt.Sprintf("Partition number (%d-%d): ", first, disk.MaxEntries))
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > disk.MaxEntries {
		return fmt.Errorf("%w: %q", disk.ErrIndexOutOfRange, strings.TrimSpace(line))
	}
	if !sh.s.Table[n-1].IsEmpty() {
		return fmt.Errorf("%w: partition %d, delete it before re-adding it", disk.ErrSlotAlreadyOccupied, n)
	}

	u := sh.s.Units
	maxUnit := uint64(sh.s.MaxUnit())
	capacity := maxUnit + 1
	def := uint64(sh.s.DefaultStart())

	line, err = sh.in.Prompt(fmt.Sprintf("First %s (%d-%d, default %d): ",
		unitName(u), disk.FromTableUnits(def, u), disk.FromTableUnits(maxUnit, u), disk.FromTableUnits(def, u)))
	if err != nil {
		return err
	}

	start := def
	if line = strings.TrimSpace(line); line == "" {
		fmt.Fprintf(sh.out, "Using default value %d\n", disk.FromTableUnits(def, u))
	} else {
		v, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %q", disk.ErrRangeOutOfBounds, line)
		}
		start = disk.ToTableUnits(v, u)
	}
	if start > maxUnit {
		return fmt.Errorf("%w: first %s %d", disk.ErrRangeOutOfBounds, unitName(u), disk.FromTableUnits(start, u))
	}

	defSize := min(capacity-start, disk.MaxFieldUnits)
	line, err = sh.in.Prompt(fmt.Sprintf("Last %s or +size or +sizeM or +sizeK (%d-%d, default %d): ",
		unitName(u), disk.FromTableUnits(start+1, u), disk.FromTableUnits(capacity, u), disk.FromTableUnits(start+defSize, u)))
	if err != nil {
		return err
	}

	var size uint32
	if line = strings.TrimSpace(line); line == "" {
		fmt.Fprintf(sh.out, "Using default value %d\n", disk.FromTableUnits(start+defSize, u))
		size = uint32(defSize)
	} else {
		size, err = disk.ParseSize(line, uint32(start), u)
		if err != nil {
			return err
		}
	}

	if err := sh.s.Add(n, uint32(start), size); err != nil {
		return err
	}
	fmt.Fprintln(sh.out)
	return nil
}

func unitName(u disk.Unit) string {
	switch u {
	case disk.UnitSectors:
		return "sector"
	case disk.UnitTracks:
		return "track"
	}
	return "cylinder"
}

func (sh *Shell) write() error {
	buf, reused, err := sh.s.Encode(sh.loaders.For(sh.s.Method))
	if err != nil {
		return err
	}
	if reused {
		sh.log.Warn("Using original boot loader code.")
	}

	if err := sh.save(buf); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Done.\n\n")
	return nil
}
