package polo

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response is the exchange's JSON body, relayed as received.
type Response struct {
	StatusCode int
	Body       jsoniter.RawMessage
}

// Decode unmarshals the body into v.
func (r Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return ExError{Code: ErrDataParse, Message: err.Error(), Err: err}
	}
	return nil
}

// Value decodes the body into generic maps, slices and numbers.
func (r Response) Value() (interface{}, error) {
	var v interface{}
	err := r.Decode(&v)
	return v, err
}

// RemoteError returns the message of an {"error": "..."} payload, or an empty
// string. The client itself never treats such payloads as failures.
func (r Response) RemoteError() string {
	it := json.BorrowIterator(r.Body)
	defer json.ReturnIterator(it)
	if it.WhatIsNext() != jsoniter.ObjectValue {
		return ""
	}
	msg := ""
	it.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		if field == "error" && it.WhatIsNext() == jsoniter.StringValue {
			msg = it.ReadString()
			return true
		}
		it.Skip()
		return true
	})
	return msg
}

func (r Response) String() string {
	return string(r.Body)
}
