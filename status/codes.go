// SPDX-License-Identifier: EPL-2.0

package status

import "fmt"

// Code is a native status result. Zero is success.
type Code int32

// OK is the success status.
const OK Code = 0

// Well-known codes returned by audio hosts. The values match AudioToolbox so
// the software host and the native host report misuse the same way.
const (
	CodeNotOpen           Code = -38 // kAudioFileNotOpenError
	CodeFileNotFound      Code = -43 // kAudioFileFileNotFoundError
	CodeParam             Code = -50 // kAudio_ParamError
	CodePermissions       Code = -54 // kAudioFilePermissionsError
	CodeUnimplemented     Code = -4  // kAudio_UnimplementedError
	CodeMemFull           Code = -108
	CodeNodeNotFound      Code = -10860 // kAUGraphErr_NodeNotFound
	CodeInvalidConnection Code = -10861 // kAUGraphErr_InvalidConnection
	CodeOutputNodeErr     Code = -10862 // kAUGraphErr_OutputNodeErr
	// CodeCannotDoInCurrentContext is returned by graphs and units alike
	// when an operation is valid but not in the current state.
	CodeCannotDoInCurrentContext Code = -10863
	CodeInvalidAudioUnit         Code = -10864 // kAUGraphErr_InvalidAudioUnit
	CodePropertyNotWritable      Code = -10865
	CodeInvalidScope             Code = -10866
	CodeUninitialized            Code = -10867
	CodeFormatNotSupported       Code = -10868
	CodeFileNotSpecified         Code = -10869
	CodeUnknownFileType          Code = -10870
	CodeInvalidFile              Code = -10871
	CodeFailedInitialization     Code = -10875
	CodeNoConnection             Code = -10876
	CodeInvalidElement           Code = -10877
	CodeInvalidParameter         Code = -10878
	CodeInvalidProperty          Code = -10879
	CodeInvalidPropertyValue     Code = -10851
	CodeInitialized              Code = -10849

	CodeUnspecifiedFile     Code = 0x7768743F // 'wht?'
	CodeUnsupportedFileType Code = 0x7479703F // 'typ?'
	CodeUnsupportedFormat   Code = 0x666D743F // 'fmt?'
	CodeUnsupportedProperty Code = 0x7074793F // 'pty?'
	CodeBadPropertySize     Code = 0x2173697A // '!siz'
	CodeInvalidFileData     Code = 0x6474613F // 'dta?'
)

var codeNames = map[Code]string{
	OK:                           "noErr",
	CodeNotOpen:                  "kAudioFileNotOpenError",
	CodeFileNotFound:             "kAudioFileFileNotFoundError",
	CodeParam:                    "kAudio_ParamError",
	CodePermissions:              "kAudioFilePermissionsError",
	CodeUnimplemented:            "kAudio_UnimplementedError",
	CodeMemFull:                  "kAudio_MemFullError",
	CodeNodeNotFound:             "kAUGraphErr_NodeNotFound",
	CodeInvalidConnection:        "kAUGraphErr_InvalidConnection",
	CodeOutputNodeErr:            "kAUGraphErr_OutputNodeErr",
	CodeCannotDoInCurrentContext: "kAUGraphErr_CannotDoInCurrentContext",
	CodeInvalidAudioUnit:         "kAUGraphErr_InvalidAudioUnit",
	CodePropertyNotWritable:      "kAudioUnitErr_PropertyNotWritable",
	CodeInvalidScope:             "kAudioUnitErr_InvalidScope",
	CodeUninitialized:            "kAudioUnitErr_Uninitialized",
	CodeFormatNotSupported:       "kAudioUnitErr_FormatNotSupported",
	CodeFileNotSpecified:         "kAudioUnitErr_FileNotSpecified",
	CodeUnknownFileType:          "kAudioUnitErr_UnknownFileType",
	CodeInvalidFile:              "kAudioUnitErr_InvalidFile",
	CodeFailedInitialization:     "kAudioUnitErr_FailedInitialization",
	CodeNoConnection:             "kAudioUnitErr_NoConnection",
	CodeInvalidElement:           "kAudioUnitErr_InvalidElement",
	CodeInvalidParameter:         "kAudioUnitErr_InvalidParameter",
	CodeInvalidProperty:          "kAudioUnitErr_InvalidProperty",
	CodeInvalidPropertyValue:     "kAudioUnitErr_InvalidPropertyValue",
	CodeInitialized:              "kAudioUnitErr_Initialized",
	CodeUnspecifiedFile:          "kAudioFileUnspecifiedError",
	CodeUnsupportedFileType:      "kAudioFileUnsupportedFileTypeError",
	CodeUnsupportedFormat:        "kAudioFileUnsupportedDataFormatError",
	CodeUnsupportedProperty:      "kAudioFileUnsupportedPropertyError",
	CodeBadPropertySize:          "kAudioFileBadPropertySizeError",
	CodeInvalidFileData:          "kAudioFileInvalidFileError",
}

// Name returns the symbolic name of c, or "" when c is not a known code.
func (c Code) Name() string {
	return codeNames[c]
}

// String renders c as "name (value)". Codes that spell four printable
// characters are shown in that form, the way hosts document them.
func (c Code) String() string {
	value := fmt.Sprintf("%d", int32(c))
	if fourcc, ok := c.fourCC(); ok {
		value = "'" + fourcc + "'"
	}

	if name := c.Name(); name != "" {
		return name + " (" + value + ")"
	}

	return value
}

func (c Code) fourCC() (string, bool) {
	u := uint32(c)
	b := []byte{byte(u >> 24), byte(u >> 16), byte(u >> 8), byte(u)}
	for _, ch := range b {
		if ch < 0x20 || ch > 0x7e {
			return "", false
		}
	}

	return string(b), true
}
