package id3

import (
	id3v2 "github.com/bogem/id3v2/v2"
)

func commentFrame(desc, text string) id3v2.CommentFrame {
	return id3v2.CommentFrame{
		Encoding:    id3v2.EncodingUTF8,
		Language:    defaultLanguage,
		Description: desc,
		Text:        text,
	}
}

func userText(desc, value string) id3v2.UserDefinedTextFrame {
	return id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: desc,
		Value:       value,
	}
}
