package discovery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates TXT records for a bridge advertisement.
func EncodeTXT(info *BridgeInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	version := info.Version
	if version == 0 {
		version = ProtocolVersion
	}
	txt[TXTKeyUnitID] = info.UnitID
	txt[TXTKeyVersion] = strconv.FormatUint(uint64(version), 10)

	if info.Name != "" {
		txt[TXTKeyName] = info.Name
	}
	if info.BaudRate > 0 {
		txt[TXTKeyBaudRate] = strconv.Itoa(info.BaudRate)
	}
	return txt
}

// DecodeTXT parses TXT records from a bridge advertisement.
func DecodeTXT(txt TXTRecordMap) (*BridgeInfo, error) {
	info := &BridgeInfo{}

	var ok bool
	info.UnitID, ok = txt[TXTKeyUnitID]
	if !ok || info.UnitID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyUnitID)
	}

	vStr, ok := txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	v, err := strconv.ParseUint(vStr, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q", ErrInvalidTXTRecord, vStr)
	}
	if v != ProtocolVersion {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, v)
	}
	info.Version = uint8(v)

	info.Name = txt[TXTKeyName]
	if bStr, ok := txt[TXTKeyBaudRate]; ok {
		baud, err := strconv.Atoi(bStr)
		if err != nil || baud <= 0 {
			return nil, fmt.Errorf("%w: baud %q", ErrInvalidTXTRecord, bStr)
		}
		info.BaudRate = baud
	}
	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a sorted slice of
// "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
