package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/hopus-ml/hopus/pkg/errors"
)

// 学習済みモデルは gob で保存する。linear のモデルは GobEncode で
// ModelWeights の JSON を中身として書き出すため、係数だけが永続化される。
//
//	if err := model.SaveModel(ridge, "ridge.gob"); err != nil { ... }
//	restored := &linear.Ridge{}
//	err := model.LoadModel(restored, "ridge.gob")

// SaveModel は m を path に書き込む。既存のファイルは上書きされる
func SaveModel(m any, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return SaveModelToWriter(m, f)
}

// LoadModel は path から m (ポインタ) へ復元する
func LoadModel(m any, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return LoadModelFromReader(m, f)
}

func SaveModelToWriter(m any, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return errors.NewModelError("SaveModel", "gob encode", err)
	}
	return nil
}

func LoadModelFromReader(m any, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return errors.NewModelError("LoadModel", "gob decode", err)
	}
	return nil
}
