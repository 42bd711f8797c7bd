package model

import (
	"reflect"
	"testing"
)

func TestStringArray_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want StringArray
	}{
		{"nil", nil, nil},
		{"empty", "{}", StringArray{}},
		{"bytes", []byte("{a1,b2}"), StringArray{"a1", "b2"}},
		{"quoted", `{"11111111-1111-1111-1111-111111111111","x"}`, StringArray{"11111111-1111-1111-1111-111111111111", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringArray
			if err := got.Scan(tt.src); err != nil {
				t.Fatalf("Scan 应成功: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("期望 %#v，实际 %#v", tt.want, got)
			}
		})
	}

	var bad StringArray
	if err := bad.Scan(42); err == nil {
		t.Error("不支持的类型应返回错误")
	}
}

func TestStringArray_Value(t *testing.T) {
	v, err := StringArray{"a", "b"}.Value()
	if err != nil {
		t.Fatalf("Value 应成功: %v", err)
	}
	if v != `{"a","b"}` {
		t.Errorf("unexpected value: %v", v)
	}

	if v, _ := StringArray(nil).Value(); v != nil {
		t.Errorf("nil 应序列化为 NULL，实际: %v", v)
	}
	if _, err := (StringArray{"a,b"}).Value(); err == nil {
		t.Error("包含逗号的元素应被拒绝")
	}
}
