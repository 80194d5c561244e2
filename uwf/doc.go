// Package uwf provides reading of UWF (Upgrade Wireless Firmware) container
// files.
//
// # UWF file format
//
// A UWF file is a binary stream of typed records, each describing one step
// of a firmware upgrade plan:
//
//	[COMMAND_ID(1)][LENGTH(4)][PAYLOAD(LENGTH)]
//
// All multi-byte integers are little-endian. Record IDs identify the
// target platform, the flash device registration, the sector geometry, and
// the erase and write operations, in file order.
//
// # Usage
//
//	r := uwf.NewReader(file)
//	for {
//	    rec, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    switch rec.ID {
//	    case uwf.RecordRegisterDevice:
//	        data, _ := rec.Payload()
//	        reg, _ := uwf.ParseRegistration(data)
//	        ...
//	    }
//	}
//
// Record payloads are exposed lazily: write-blocks data can be streamed
// from Record.Body so the whole firmware image never sits in memory.
package uwf
