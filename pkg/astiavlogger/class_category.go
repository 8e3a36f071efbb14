package astiavlogger

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/asticode/go-astiav"
	"github.com/iancoleman/strcase"
	"github.com/xaionaro-go/unsafetools"
)

var classCategoryNames = map[astiav.ClassCategory]string{
	astiav.ClassCategoryBitstreamFilter:   "BitstreamFilter",
	astiav.ClassCategoryDecoder:           "Decoder",
	astiav.ClassCategoryDemuxer:           "Demuxer",
	astiav.ClassCategoryDeviceAudioInput:  "DeviceAudioInput",
	astiav.ClassCategoryDeviceAudioOutput: "DeviceAudioOutput",
	astiav.ClassCategoryDeviceInput:       "DeviceInput",
	astiav.ClassCategoryDeviceOutput:      "DeviceOutput",
	astiav.ClassCategoryDeviceVideoInput:  "DeviceVideoInput",
	astiav.ClassCategoryDeviceVideoOutput: "DeviceVideoOutput",
	astiav.ClassCategoryEncoder:           "Encoder",
	astiav.ClassCategoryFilter:            "Filter",
	astiav.ClassCategoryInput:             "Input",
	astiav.ClassCategoryMuxer:             "Muxer",
	astiav.ClassCategoryNa:                "Na",
	astiav.ClassCategoryOutput:            "Output",
	astiav.ClassCategorySwresampler:       "Swresampler",
	astiav.ClassCategorySwscaler:          "Swscaler",
}

func ClassCategoryToString(cat astiav.ClassCategory) string {
	if name, ok := classCategoryNames[cat]; ok {
		return name
	}
	return fmt.Sprintf("unexpected_class_category_%d", cat)
}

// ClassChain describes the libav object and its parents, like
// "[encoder]libx264:libx264:0xc000123456->[muxer]mp4:mp4:0xc000654321".
func ClassChain(c astiav.Classer) string {
	if c == nil {
		return ""
	}
	var chain []string
	for cl := c.Class(); cl != nil; cl = cl.Parent() {
		chain = append(chain, fmt.Sprintf(
			"[%s]%s:%s:%p",
			strcase.ToSnake(ClassCategoryToString(cl.Category())),
			cl.Name(),
			cl.ItemName(),
			*unsafetools.FieldByName(cl, "ptr").(*unsafe.Pointer),
		))
	}
	return strings.Join(chain, "->")
}
