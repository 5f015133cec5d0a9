// If you are AI: converts between the FLV/AVCC shape internal/media/packet
// carries (length-prefixed NALUs, the AVCC layout FLV video tags
// SrsFormat uses) and the Annex-B shape pion/webrtc's H264 samples use.
// The length-prefix <-> start-code conversion rules and the
// AVCDecoderConfigurationRecord layout follow the H.264/FLV specs'
// avc_demux_sps_pps/mux_avc2flv, not anything pion-specific.
package webrtc

import "encoding/binary"

// splitAVCC walks a sequence of 4-byte-length-prefixed NALUs, the shape
// carried after the 5-byte FLV VIDEODATA header in an AVCPacketType=NALU
// tag's payload.
func splitAVCC(data []byte) [][]byte {
	var nalus [][]byte
	for len(data) >= 4 {
		n := binary.BigEndian.Uint32(data[:4])
		data = data[4:]
		if uint64(n) > uint64(len(data)) {
			break
		}
		nalus = append(nalus, data[:n])
		data = data[n:]
	}
	return nalus
}

// annexBToAVCC rewrites a list of raw NALUs (already split on start codes
// by a pion samplebuilder depacketizer) into the FLV/AVCC NALU area: each
// NALU preceded by its own 4-byte big-endian length.
func annexBToAVCC(nalus [][]byte) []byte {
	var size int
	for _, n := range nalus {
		size += 4 + len(n)
	}
	out := make([]byte, 0, size)
	var lenBuf [4]byte
	for _, n := range nalus {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(n)))
		out = append(out, lenBuf[:]...)
		out = append(out, n...)
	}
	return out
}

// splitAnnexB splits a byte stream using 3- or 4-byte Annex-B start codes
// into individual NALUs, the shape media.Sample.Data arrives in from a
// pion samplebuilder/H264 depacketizer.
func splitAnnexB(data []byte) [][]byte {
	starts := findStartCodes(data)
	if len(starts) == 0 {
		return nil
	}
	nalus := make([][]byte, 0, len(starts))
	for i, s := range starts {
		end := len(data)
		if i+1 < len(starts) {
			end = starts[i+1].offset
		}
		nalu := data[s.offset+s.length : end]
		if len(nalu) > 0 {
			nalus = append(nalus, nalu)
		}
	}
	return nalus
}

type startCode struct {
	offset int
	length int
}

// findStartCodes locates every Annex-B start code in data.
func findStartCodes(data []byte) []startCode {
	var out []startCode
	for i := 0; i+2 < len(data); i++ {
		if data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			out = append(out, startCode{offset: i, length: 3})
			i += 2
			continue
		}
		if i+3 < len(data) && data[i] == 0 && data[i+1] == 0 && data[i+2] == 0 && data[i+3] == 1 {
			out = append(out, startCode{offset: i, length: 4})
			i += 3
		}
	}
	return out
}

// nalUnitType returns the H.264 NAL unit type (low 5 bits of the header).
func nalUnitType(nalu []byte) byte {
	if len(nalu) == 0 {
		return 0
	}
	return nalu[0] & 0x1F
}

// isReferenceNALU reports whether nal_ref_idc is non-zero, i.e. this NALU
// is referenced by later pictures. H.264 B-slices coded as disposable
// pictures carry nal_ref_idc=0, so filtering on this bit is the same
// coarse "drop B-frames" signal reference-frame filters use
// when no full slice-header parse is available.
func isReferenceNALU(nalu []byte) bool {
	if len(nalu) == 0 {
		return false
	}
	return (nalu[0]>>5)&0x3 != 0
}

const (
	nalTypeSliceNonIDR byte = 1
	nalTypeIDR         byte = 5
	nalTypeSPS         byte = 7
	nalTypePPS         byte = 8
)

// isKeyframeNALUs reports whether an access unit (already split into
// NALUs) contains an IDR slice.
func isKeyframeNALUs(nalus [][]byte) bool {
	for _, n := range nalus {
		if nalUnitType(n) == nalTypeIDR {
			return true
		}
	}
	return false
}

// extractParameterSets pulls the SPS/PPS NALUs out of an access unit, if
// present, returning the remaining NALUs separately.
func extractParameterSets(nalus [][]byte) (sps, pps [][]byte, rest [][]byte) {
	for _, n := range nalus {
		switch nalUnitType(n) {
		case nalTypeSPS:
			sps = append(sps, n)
		case nalTypePPS:
			pps = append(pps, n)
		default:
			rest = append(rest, n)
		}
	}
	return
}

// buildAVCDecoderConfigurationRecord emits the standard
// SrsFormat::avc_demux_sps_pps inverse: packing one SPS and one PPS into
// the record an FLV AVCPacketType=0 tag carries.
func buildAVCDecoderConfigurationRecord(sps, pps []byte) []byte {
	out := make([]byte, 0, 11+len(sps)+len(pps))
	out = append(out, 0x01) // configurationVersion
	if len(sps) >= 4 {
		out = append(out, sps[1], sps[2], sps[3]) // profile, compat, level
	} else {
		out = append(out, 0x42, 0x00, 0x1F)
	}
	out = append(out, 0xFF) // reserved(6) + lengthSizeMinusOne=3 (4-byte length)
	out = append(out, 0xE1) // reserved(3) + numOfSPS=1
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(sps)))
	out = append(out, lenBuf[:]...)
	out = append(out, sps...)
	out = append(out, 0x01) // numOfPPS
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(pps)))
	out = append(out, lenBuf[:]...)
	out = append(out, pps...)
	return out
}

// parseAVCDecoderConfigurationRecord extracts the first SPS/PPS pair from
// an AVCPacketType=0 tag's payload (the bytes after the 5-byte FLV
// VIDEODATA header).
func parseAVCDecoderConfigurationRecord(data []byte) (sps, pps []byte, ok bool) {
	if len(data) < 6 || data[0] != 0x01 {
		return nil, nil, false
	}
	numSPS := int(data[5] & 0x1F)
	off := 6
	for i := 0; i < numSPS; i++ {
		if off+2 > len(data) {
			return nil, nil, false
		}
		n := int(binary.BigEndian.Uint16(data[off : off+2]))
		off += 2
		if off+n > len(data) {
			return nil, nil, false
		}
		if i == 0 {
			sps = data[off : off+n]
		}
		off += n
	}
	if off >= len(data) {
		return sps, nil, sps != nil
	}
	numPPS := int(data[off])
	off++
	for i := 0; i < numPPS; i++ {
		if off+2 > len(data) {
			break
		}
		n := int(binary.BigEndian.Uint16(data[off : off+2]))
		off += 2
		if off+n > len(data) {
			break
		}
		if i == 0 {
			pps = data[off : off+n]
		}
		off += n
	}
	return sps, pps, sps != nil && pps != nil
}

// buildVideoSequenceHeaderPayload builds a complete FLV VIDEODATA tag
// payload (5-byte header + AVCDecoderConfigurationRecord) for CodecID=AVC.
func buildVideoSequenceHeaderPayload(sps, pps []byte) []byte {
	record := buildAVCDecoderConfigurationRecord(sps, pps)
	out := make([]byte, 0, 5+len(record))
	out = append(out, 0x17, 0x00, 0x00, 0x00, 0x00)
	out = append(out, record...)
	return out
}

// buildVideoNALUPayload builds a complete FLV VIDEODATA tag payload (5-byte
// header + length-prefixed NALUs) for CodecID=AVC, AVCPacketType=NALU.
func buildVideoNALUPayload(nalus [][]byte, keyframe bool) []byte {
	frameAndCodec := byte(0x27) // inter frame, AVC
	if keyframe {
		frameAndCodec = 0x17 // key frame, AVC
	}
	avcc := annexBToAVCC(nalus)
	out := make([]byte, 0, 5+len(avcc))
	out = append(out, frameAndCodec, 0x01, 0x00, 0x00, 0x00)
	out = append(out, avcc...)
	return out
}
