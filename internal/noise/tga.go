package noise

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

var errTGATruncated = errors.New("tga: truncated data")

// decodeTGA handles uncompressed and RLE true-color TGA files with 24 or 32
// bits per pixel.
func decodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, errTGATruncated
	}
	idLength := int(data[0])
	if data[1] != 0 {
		return nil, errors.New("tga: color-mapped images are not supported")
	}
	kind := data[2]
	if kind != tgaTrueColor && kind != tgaTrueColorRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", kind)
	}
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	}
	topDown := data[17]&0x20 != 0

	if 18+idLength > len(data) {
		return nil, errTGATruncated
	}
	d := &tgaDecoder{
		img:     image.NewNRGBA(image.Rect(0, 0, width, height)),
		src:     data[18+idLength:],
		stride:  bpp / 8,
		width:   width,
		height:  height,
		topDown: topDown,
	}

	var err error
	if kind == tgaTrueColor {
		err = d.raw(width * height)
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img     *image.NRGBA
	src     []byte
	stride  int
	width   int
	height  int
	topDown bool
	pixel   int
}

// next reads one BGR(A) pixel.
func (d *tgaDecoder) next() ([4]byte, error) {
	if len(d.src) < d.stride {
		return [4]byte{}, errTGATruncated
	}
	p := [4]byte{d.src[2], d.src[1], d.src[0], 255}
	if d.stride == 4 {
		p[3] = d.src[3]
	}
	d.src = d.src[d.stride:]
	return p, nil
}

func (d *tgaDecoder) put(p [4]byte) {
	x := d.pixel % d.width
	y := d.pixel / d.width
	if !d.topDown {
		y = d.height - 1 - y
	}
	i := d.img.PixOffset(x, y)
	copy(d.img.Pix[i:i+4], p[:])
	d.pixel++
}

func (d *tgaDecoder) raw(n int) error {
	total := d.width * d.height
	for ; n > 0 && d.pixel < total; n-- {
		p, err := d.next()
		if err != nil {
			return err
		}
		d.put(p)
	}
	return nil
}

func (d *tgaDecoder) rle() error {
	total := d.width * d.height
	for d.pixel < total {
		if len(d.src) == 0 {
			return errTGATruncated
		}
		header := d.src[0]
		d.src = d.src[1:]
		count := int(header&0x7f) + 1

		if header&0x80 == 0 {
			if err := d.raw(count); err != nil {
				return err
			}
			continue
		}
		p, err := d.next()
		if err != nil {
			return err
		}
		for ; count > 0 && d.pixel < total; count-- {
			d.put(p)
		}
	}
	return nil
}
