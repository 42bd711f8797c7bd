package i18n

import "testing"

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		fallback string
		want     string
	}{
		{"空头使用 fallback", "", English, English},
		{"印尼语", "id-ID,id;q=0.9", English, Indonesian},
		{"中文地区变体", "zh-CN,zh;q=0.9,en;q=0.8", Indonesian, Chinese},
		{"英语优先", "en-US,en;q=0.9,id;q=0.5", Indonesian, English},
		{"不支持的语言", "fr-FR", English, English},
		{"非法 fallback 回退默认", "", "xx", Default},
		{"非法头", ";;;", Chinese, Chinese},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Negotiate(tt.header, tt.fallback); got != tt.want {
				t.Errorf("Negotiate(%q, %q) = %q, want %q", tt.header, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestT(t *testing.T) {
	if got := T(English, MsgBookingRoomRequired); got != "Please select a room first" {
		t.Errorf("unexpected en message: %q", got)
	}
	if got := T("fr", MsgBookingRoomRequired); got != catalog[Default][MsgBookingRoomRequired] {
		t.Errorf("未知语言应回退默认语言，得到: %q", got)
	}
	if got := T(English, "no.such.key"); got != "no.such.key" {
		t.Errorf("缺失 key 应原样返回，得到: %q", got)
	}
	if got := T(English, MsgWarnEquipmentUnavailable, 2); got != "Some selected equipment is unavailable (2)" {
		t.Errorf("格式化参数未生效: %q", got)
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback("duplicate key value", English, MsgBookingGenericError); got != "duplicate key value" {
		t.Errorf("原始消息应优先，得到: %q", got)
	}
	if got := Fallback("", Chinese, MsgBookingGenericError); got != "预约提交失败，请重试" {
		t.Errorf("空原始消息应回退本地化消息，得到: %q", got)
	}
}

func TestCatalogComplete(t *testing.T) {
	for key := range catalog[Default] {
		for _, lang := range codes {
			if _, ok := catalog[lang][key]; !ok {
				t.Errorf("语言 %s 缺少消息 %s", lang, key)
			}
		}
	}
}
