package wavetile

import (
	"golang.org/x/sys/cpu"
)

// hostFeatures lists host instruction set extensions that speed up the
// narrow float conversions the emulator performs.
func hostFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}

	add(cpu.X86.HasAVX2, "AVX2")
	add(cpu.X86.HasFMA, "FMA")
	add(cpu.X86.HasAVX512F, "AVX512F")
	add(cpu.X86.HasAVX512BF16, "AVX512BF16")
	add(cpu.ARM64.HasASIMD, "ASIMD")
	add(cpu.ARM64.HasFPHP, "FPHP")
	add(cpu.ARM64.HasASIMDHP, "ASIMDHP")
	return features
}
