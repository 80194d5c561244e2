package upgrade

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LairdCP/lrd-bt-utils/fup"
	"github.com/LairdCP/lrd-bt-utils/transport"
	"github.com/LairdCP/lrd-bt-utils/uwf"
)

// Session executes a UWF upgrade plan against one module. It owns the
// transport, the protocol client and the profile for its lifetime, pulls
// records from the file in order and advances through the session states
// (synchronized, registered, erased, write complete) only on fully
// acknowledged records. Every error is terminal: the session halts,
// returns the module to firmware mode and releases the transport.
//
// A Session runs a single upgrade and is not reusable.
type Session struct {
	transport transport.Transport
	client    *fup.Client
	profile   Profile
	config    Config

	synchronized  bool
	registered    bool
	erased        bool
	writeComplete bool

	registration *uwf.Registration
	selection    *uwf.Selection
	sectorMap    *uwf.SectorMap

	enhancedMode   bool
	writeBlockSize int

	records      int
	bytesWritten int
	started      time.Time
}

// New creates a session over the given transport and device profile.
//
// Example:
//
//	port, err := transport.OpenSerial("/dev/ttyS2", 115200)
//	if err != nil {
//	    return err
//	}
//	channel, err := bootmode.NewDeviceService()
//	if err != nil {
//	    return err
//	}
//	sess := upgrade.New(port, upgrade.NewIG60BL654(channel))
//	err = sess.Run(ctx, uwfFile)
func New(t transport.Transport, profile Profile, opts ...Option) *Session {
	if t == nil {
		panic("transport cannot be nil")
	}
	if profile == nil {
		panic("profile cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		transport:      t,
		client:         fup.NewClient(t),
		profile:        profile,
		config:         cfg,
		writeBlockSize: cfg.WriteBlockSize,
	}
}

// Run processes the UWF stream to completion. The transport is closed on
// every exit path; once bootloader mode has been entered, the module is
// returned to firmware mode on every exit path as well. Cancellation via
// ctx takes effect between records; individual commands are bounded by the
// transport read timeout.
func (s *Session) Run(ctx context.Context, file io.Reader) (err error) {
	s.started = time.Now()
	defer func() {
		if cerr := s.transport.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	s.reportProgress(PhaseEntering)
	s.config.Logger.WithField("profile", s.profile.Name()).Info("entering bootloader mode")

	if eerr := s.profile.BootMode().EnterBootloader(); eerr != nil {
		return &EntryError{Err: eerr}
	}

	defer func() {
		s.reportProgress(PhaseRebooting)
		s.config.Logger.Info("returning module to firmware mode")
		if lerr := s.profile.BootMode().LeaveBootloader(); lerr != nil && err == nil {
			err = fmt.Errorf("leave bootloader: %w", lerr)
		}
	}()

	// The module may print a banner on reset; drain it before the first
	// command.
	if _, derr := s.transport.ReadLine(); derr != nil {
		return &EntryError{Err: derr}
	}

	reader := uwf.NewReader(file)
	for {
		if cerr := ctx.Err(); cerr != nil {
			return fmt.Errorf("cancelled: %w", cerr)
		}

		rec, rerr := reader.Next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}

		s.records++
		if derr := s.dispatch(rec); derr != nil {
			return derr
		}
	}

	s.reportProgress(PhaseComplete)
	s.config.Logger.WithFields(logrus.Fields{
		"records": s.records,
		"bytes":   s.bytesWritten,
		"elapsed": time.Since(s.started).String(),
	}).Info("upgrade complete")

	return nil
}

func (s *Session) dispatch(rec *uwf.Record) error {
	s.config.Logger.WithFields(logrus.Fields{
		"record": fmt.Sprintf("%c", rec.ID),
		"length": rec.Length,
	}).Debug("processing record")

	switch rec.ID {
	case uwf.RecordTargetPlatform:
		return s.processTargetPlatform(rec)
	case uwf.RecordRegisterDevice:
		return s.processRegisterDevice(rec)
	case uwf.RecordSelectDevice:
		return s.processSelectDevice(rec)
	case uwf.RecordSectorMap:
		return s.processSectorMap(rec)
	case uwf.RecordEraseBlocks:
		return s.processEraseBlocks(rec)
	case uwf.RecordWriteBlocks:
		return s.processWriteBlocks(rec)
	case uwf.RecordUnregister:
		return s.processUnregister(rec)
	default:
		return &UnknownRecordError{ID: rec.ID}
	}
}

// processTargetPlatform synchronizes with the bootloader, validates the
// platform ID, then probes for enhanced mode.
func (s *Session) processTargetPlatform(rec *uwf.Record) error {
	platformID, err := rec.Payload()
	if err != nil {
		return err
	}

	s.reportProgress(PhaseSynchronizing)

	ats, err := s.client.Sync()
	if err != nil {
		return &SyncError{Err: err}
	}
	s.config.Logger.WithField("ats", fmt.Sprintf("% X", ats)).Debug("bootloader sync")

	if err := s.client.Acknowledge(); err != nil {
		return &SyncError{Err: err}
	}

	resp, err := s.client.PlatformCheck(platformID)
	if err != nil {
		return fmt.Errorf("target platform: %w", err)
	}
	switch resp {
	case fup.ResponseAck:
		s.synchronized = true
	case fup.ResponseError:
		return &PlatformInvalidError{}
	default:
		return &PlatformFatalError{Response: resp}
	}

	return s.enhancedModeCheck()
}

// enhancedModeCheck reads the bootloader version and, for enhanced
// bootloaders, renegotiates the UART to 1 Mbaud and enables 16-bit write
// lengths. The old transport handle is closed before the new one opens.
func (s *Session) enhancedModeCheck() error {
	reply, err := s.client.Version()
	if err != nil {
		return fmt.Errorf("target platform: %w", err)
	}

	major, err := fup.ParseVersionMajor(reply)
	if err != nil {
		return fmt.Errorf("target platform: %w", err)
	}

	if major < fup.EnhancedVersionMajor {
		s.enhancedMode = false
		s.config.Logger.WithField("major", major).Debug("legacy bootloader")
		return nil
	}

	s.enhancedMode = true
	s.writeBlockSize = EnhancedWriteBlockSize
	s.config.Logger.WithField("major", major).Info("enhanced bootloader detected")

	if _, err := s.client.SettingSet(fup.OptionBaudRate, fup.BaudCode1M); err != nil {
		return fmt.Errorf("target platform: %w", err)
	}
	if err := s.transport.Reopen(fup.EnhancedBaudRate); err != nil {
		return fmt.Errorf("target platform: reopen at %d baud: %w", fup.EnhancedBaudRate, err)
	}
	if _, err := s.client.SettingSet(fup.OptionWriteLength, fup.WriteLength16Bit); err != nil {
		return fmt.Errorf("target platform: %w", err)
	}

	return nil
}

func (s *Session) processRegisterDevice(rec *uwf.Record) error {
	if !s.synchronized {
		return &PreconditionError{RecordID: rec.ID, Missing: "target platform command"}
	}

	data, err := rec.Payload()
	if err != nil {
		return err
	}
	reg, err := uwf.ParseRegistration(data)
	if err != nil {
		return fmt.Errorf("register device: %w", err)
	}

	if err := s.profile.ValidateRegistration(reg); err != nil {
		s.registered = false
		return err
	}

	s.registration = reg
	s.registered = true
	s.config.Logger.WithFields(logrus.Fields{
		"handle":    reg.Handle,
		"base":      fmt.Sprintf("0x%08X", reg.BaseAddress),
		"banks":     reg.NumBanks,
		"bank_size": fmt.Sprintf("0x%X", reg.BankSize),
	}).Debug("device registered")

	return nil
}

func (s *Session) processSelectDevice(rec *uwf.Record) error {
	if !s.synchronized {
		return &PreconditionError{RecordID: rec.ID, Missing: "target platform command"}
	}

	data, err := rec.Payload()
	if err != nil {
		return err
	}
	sel, err := uwf.ParseSelection(data)
	if err != nil {
		return fmt.Errorf("select device: %w", err)
	}

	s.selection = sel
	return nil
}

func (s *Session) processSectorMap(rec *uwf.Record) error {
	if !s.synchronized {
		return &PreconditionError{RecordID: rec.ID, Missing: "target platform command"}
	}

	data, err := rec.Payload()
	if err != nil {
		return err
	}
	m, err := uwf.ParseSectorMap(data)
	if err != nil {
		return fmt.Errorf("sector map: %w", err)
	}

	s.sectorMap = m
	return nil
}

// processEraseBlocks erases the described region sector by sector (or in
// 64 KiB blocks when the profile's plan allows), stopping on the first
// refused erase. The erased flag is set only when every erase acked.
func (s *Session) processEraseBlocks(rec *uwf.Record) error {
	if !s.synchronized || !s.registered ||
		s.sectorMap == nil || s.sectorMap.Sectors == 0 || s.sectorMap.SectorSize == 0 {
		return &PreconditionError{RecordID: rec.ID, Missing: "target platform, register device, or sector map commands"}
	}

	data, err := rec.Payload()
	if err != nil {
		return err
	}
	desc, err := uwf.ParseErase(data)
	if err != nil {
		return fmt.Errorf("erase blocks: %w", err)
	}

	if desc.Size >= s.registration.BankSize {
		return &EraseSizeError{Size: desc.Size, BankSize: s.registration.BankSize}
	}

	stride, blockCode := s.profile.ErasePlan(desc.Size, s.sectorMap.SectorSize, s.enhancedMode)
	if blockCode != nil {
		if _, err := s.client.SettingSet(fup.OptionEraseLength, fup.EraseLength64K); err != nil {
			return fmt.Errorf("erase blocks: %w", err)
		}
	}

	s.reportProgress(PhaseErasing)
	s.config.Logger.WithFields(logrus.Fields{
		"start":  fmt.Sprintf("0x%08X", s.registration.BaseAddress+desc.Offset),
		"size":   fmt.Sprintf("0x%X", desc.Size),
		"stride": fmt.Sprintf("0x%X", stride),
	}).Info("erasing")

	start := s.registration.BaseAddress + desc.Offset
	remaining := int64(desc.Size)

	var eraseErr error
	for remaining > 0 {
		if err := s.client.EraseSector(start, blockCode); err != nil {
			eraseErr = fmt.Errorf("erase blocks: %w", err)
			break
		}
		start += stride
		remaining -= int64(stride)
	}
	if eraseErr != nil {
		return eraseErr
	}

	// Reached only when every erase in the loop acked.
	s.erased = true
	return nil
}

// processWriteBlocks streams the record's data to flash in write-block
// chunks, closing a verify window every VerifyWriteLimit chunks and at the
// final chunk. The write-complete flag is set only when the whole payload
// was written and verified.
func (s *Session) processWriteBlocks(rec *uwf.Record) error {
	if !s.erased {
		return &PreconditionError{RecordID: rec.ID, Missing: "erase command"}
	}

	header := make([]byte, uwf.WriteHeaderSize)
	if _, err := io.ReadFull(rec.Body(), header); err != nil {
		return fmt.Errorf("write blocks: truncated header: %w", err)
	}
	hdr, err := uwf.ParseWriteHeader(header)
	if err != nil {
		return fmt.Errorf("write blocks: %w", err)
	}

	remaining := int64(rec.Length) - uwf.WriteHeaderSize
	if remaining >= int64(s.registration.BankSize) {
		return &WriteSizeError{Size: uint32(remaining), BankSize: s.registration.BankSize}
	}

	s.reportProgress(PhaseWriting)
	s.config.Logger.WithFields(logrus.Fields{
		"offset": fmt.Sprintf("0x%08X", s.registration.BaseAddress+hdr.Offset),
		"size":   remaining,
		"flags":  fmt.Sprintf("0x%X", hdr.Flags),
	}).Info("writing")

	offset := s.registration.BaseAddress + hdr.Offset

	// Verify window state: start address, chunks, bytes and the
	// untruncated 32-bit checksum accumulated since the last verify.
	verifyStart := offset
	verifyCount := 0
	var verifySize uint32
	var verifyChecksum uint32

	buf := make([]byte, s.writeBlockSize)

	var writeErr error
	for remaining > 0 {
		chunk := int64(s.writeBlockSize)
		lastWrite := false
		if remaining <= chunk {
			chunk = remaining
			lastWrite = true
		}

		data := buf[:chunk]
		if _, err := io.ReadFull(rec.Body(), data); err != nil {
			return fmt.Errorf("write blocks: truncated data: %w", err)
		}

		if err := s.client.WriteCommand(offset, int(chunk), s.enhancedMode); err != nil {
			writeErr = fmt.Errorf("write blocks: %w", err)
			break
		}
		if err := s.client.DataSection(data); err != nil {
			writeErr = fmt.Errorf("write blocks: %w", err)
			break
		}

		offset += uint32(chunk)
		remaining -= chunk
		s.bytesWritten += int(chunk)

		verifyCount++
		verifySize += uint32(chunk)
		verifyChecksum += fup.BlockChecksum(data)

		if lastWrite || verifyCount >= s.config.VerifyWriteLimit {
			if err := s.client.Verify(verifyStart, verifySize, verifyChecksum); err != nil {
				writeErr = fmt.Errorf("write blocks: %w", err)
				break
			}
			verifyStart = offset
			verifyCount = 0
			verifySize = 0
			verifyChecksum = 0
		}

		s.reportProgress(PhaseWriting)
	}
	if writeErr != nil {
		return writeErr
	}

	// Reached only when the loop delivered and verified every chunk.
	s.writeComplete = true
	return nil
}

func (s *Session) processUnregister(rec *uwf.Record) error {
	if !s.writeComplete {
		return &PreconditionError{RecordID: rec.ID, Missing: "write command"}
	}

	// The record carries no work for the bootloader; consume its payload.
	if _, err := rec.Payload(); err != nil {
		return err
	}
	return nil
}

// reportProgress calls the progress callback if configured.
func (s *Session) reportProgress(phase Phase) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(Progress{
			Phase:        phase,
			Records:      s.records,
			BytesWritten: s.bytesWritten,
			Elapsed:      time.Since(s.started),
		})
	}
}
