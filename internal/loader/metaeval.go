package loader

import "io"

// metaEvalFields is the WMT direct-assessment segment schema:
// SYSName, SEGID, TestSet, src, ref, sys, manualRaw, manualZ.
var metaEvalFields = []Field{
	StringField("sys_name"),
	StringField("seg_id"),
	StringField("test_set"),
	StringField("source"),
	StringField("reference"),
	StringField("hypothesis"),
	OptionalFloatField("manual_score_raw"),
	FloatField("manual_score_z"),
}

// ReadMetaEvalTSV parses a WMT metric meta-evaluation dataset. The matching
// system output holds one automatic metric score per segment, loaded with
// ReadTSV([]Field{FloatField("auto_score")}) or ReadText plus parsing.
func ReadMetaEvalTSV(r io.Reader) ([]Sample, error) {
	return ReadTSV(r, metaEvalFields)
}
