package command

import "github.com/edirooss/resp-store/internal/wire"

// WireCmd is the write record's command payload: the command name plus its
// fully-resolved argument bytes, in the order the parser consumed them.
// Every write command reduces to this one shape for fan-out encoding, since
// replaying it only requires re-running the same name through the registry.
type WireCmd struct {
	Name string
	Args [][]byte
}

// Encode serializes a WireCmd using the shared binary format: name, then
// argument count, then each argument length-prefixed.
func (c WireCmd) Encode() []byte {
	buf := wire.PutBytes(nil, []byte(c.Name))
	buf = wire.PutUvarint(buf, uint64(len(c.Args)))
	for _, a := range c.Args {
		buf = wire.PutBytes(buf, a)
	}
	return buf
}

// DecodeWireCmd parses a WireCmd previously produced by Encode.
func DecodeWireCmd(buf []byte) (WireCmd, error) {
	name, n, err := wire.ReadBytes(buf)
	if err != nil {
		return WireCmd{}, err
	}
	buf = buf[n:]
	count, n, err := wire.ReadUvarint(buf)
	if err != nil {
		return WireCmd{}, err
	}
	buf = buf[n:]
	args := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		a, an, aerr := wire.ReadBytes(buf)
		if aerr != nil {
			return WireCmd{}, aerr
		}
		buf = buf[an:]
		args = append(args, a)
	}
	return WireCmd{Name: string(name), Args: args}, nil
}
