package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	registrystorage "github.com/polystake/noderegistry/registry/storage"
)

type Hex []byte

func (h Hex) MarshalJSON() ([]byte, error) {
	return []byte("\"" + hex.EncodeToString(h) + "\""), nil
}

func (h *Hex) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("invalid hex string")
	}
	return h.Bind(string(data[1 : len(data)-1]))
}

func (h *Hex) Bind(value string) error {
	b, err := hex.DecodeString(strings.TrimPrefix(value, "0x"))
	if err != nil {
		return err
	}
	*h = b
	return nil
}

type HexSlice []Hex

func (hs *HexSlice) Bind(value string) error {
	if value == "" {
		return nil
	}
	for _, s := range strings.Split(value, ",") {
		var h Hex
		err := h.Bind(s)
		if err != nil {
			return err
		}
		*hs = append(*hs, h)
	}
	return nil
}

type Uint64Slice []uint64

func (us *Uint64Slice) Bind(value string) error {
	if value == "" {
		return nil
	}
	for _, s := range strings.Split(value, ",") {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		*us = append(*us, n)
	}
	return nil
}

type Status registrystorage.OperatorStatus

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(registrystorage.OperatorStatus(s).String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	return s.Bind(name)
}

func (s *Status) Bind(value string) error {
	var status registrystorage.OperatorStatus
	if err := status.UnmarshalText([]byte(value)); err != nil {
		return err
	}
	*s = Status(status)
	return nil
}

type StatusSlice []Status

func (ss *StatusSlice) Bind(value string) error {
	if value == "" {
		return nil
	}
	for _, s := range strings.Split(value, ",") {
		var status Status
		if err := status.Bind(s); err != nil {
			return err
		}
		*ss = append(*ss, status)
	}
	return nil
}
