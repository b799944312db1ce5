package anki

// groupFields is the note type of polygon decks. The three overlay
// fields hold ready <img> tags so the importer's media scanner finds
// the files.
var groupFields = []string{
	"Group_ID",
	"Name",
	"Hoechster_Gipfel",
	"Basemap",
	"FrontOverlay",
	"BackOverlay",
	"Partition",
	"Context",
}

// poiFields is the note type of POI decks. One note feeds both the
// locate and the identify template.
var poiFields = []string{
	"POI_ID",
	"Name",
	"Category",
	"Info",
	"Basemap",
	"AllPois",
	"Highlight",
	"BackOverlay",
	"Context",
}

// Card CSS for polygon decks. All <img> are direct children of
// .card-map; partition and context start hidden and are toggled by the
// hint buttons.
const groupCSS = `.card {
    font-family: "Segoe UI", Arial, Helvetica, sans-serif;
    font-size: 16px;
    text-align: center;
    color: #222;
    background: #fff;
}
.card-map {
    position: relative;
    display: inline-block;
    line-height: 0;
    margin: 8px 0;
}
.card-map img {
    max-width: 100%;
}
.card-map img.basemap {
    display: block;
}
.card-map img.overlay {
    position: absolute;
    top: 0;
    left: 0;
    width: 100%;
    height: 100%;
}
.card-map img.partition,
.card-map img.context {
    display: none;
}
.answer-info {
    margin: 10px 0;
    font-size: 18px;
}
.answer-info .name {
    font-weight: bold;
    font-size: 20px;
}
.answer-info .gipfel {
    color: #555;
    font-size: 15px;
}
.hint-btn {
    position: absolute;
    top: 8px;
    left: 8px;
    padding: 5px 12px;
    font-size: 12px;
    color: #2E86C1;
    background: rgba(235,245,251,0.9);
    border: 1px solid #AED6F1;
    border-radius: 5px;
    cursor: pointer;
    z-index: 5;
    line-height: normal;
}
.hint-btn:hover {
    background: rgba(212,230,241,0.95);
}
`

// The two hint buttons plus the restore script. Toggle state survives
// the front/back flip via sessionStorage.
const groupHintButtons = `<button class="hint-btn" onclick="var i=this.parentNode.querySelector('img.partition');var v=i.style.display!=='block';i.style.display=v?'block':'none';this.textContent=v?'✖ Einteilung':'▦ Einteilung';sessionStorage.setItem('ps_et',v?'1':'0');">&#9638; Einteilung</button>
<button class="hint-btn" style="left:110px;" onclick="var i=this.parentNode.querySelector('img.context');var v=i.style.display!=='block';i.style.display=v?'block':'none';this.textContent=v?'✖ Kontext':'▦ Kontext';sessionStorage.setItem('ps_ctx',v?'1':'0');">&#9638; Kontext</button>`

const groupRestoreScript = `<script>(function(){var c=document.querySelector('.card-map');if(!c)return;var bs=c.querySelectorAll('.hint-btn');if(sessionStorage.getItem('ps_et')==='1'){var p=c.querySelector('img.partition');if(p)p.style.display='block';if(bs[0])bs[0].textContent='✖ Einteilung';}if(sessionStorage.getItem('ps_ctx')==='1'){var x=c.querySelector('img.context');if(x)x.style.display='block';if(bs[1])bs[1].textContent='✖ Kontext';}})();</script>`

const groupTmplFront = `<div class="card-map">
{{Basemap}}
{{Partition}}
{{Context}}
{{FrontOverlay}}
` + groupHintButtons + `
</div>
` + groupRestoreScript + "\n"

const groupTmplBack = `<div class="answer-info">
<div class="name">{{Name}} ({{Group_ID}})</div>
<div class="gipfel">{{Hoechster_Gipfel}}</div>
</div>
<hr>
<div class="card-map">
{{Basemap}}
{{Partition}}
{{Context}}
{{BackOverlay}}
` + groupHintButtons + `
</div>
` + groupRestoreScript + "\n"

// Card CSS for POI decks. The map container clips overflow so the
// zoom script can pan inside it.
const poiCSS = `.card {
    font-family: "Segoe UI", Arial, Helvetica, sans-serif;
    font-size: 16px;
    text-align: center;
    color: #222;
    background: #fff;
    margin: 0;
    padding: 0;
}
.question {
    font-size: 20px;
    font-weight: bold;
    color: #CC0000;
    margin: 10px 0 2px;
}
.info {
    font-size: 14px;
    color: #666;
    margin-bottom: 6px;
}
.answer-info {
    margin: 10px 0;
    font-size: 18px;
}
.answer-info .name {
    font-weight: bold;
    font-size: 20px;
    color: #CC0000;
}
.answer-info .detail {
    color: #555;
    font-size: 15px;
}
.card-map {
    position: relative;
    display: inline-block;
    line-height: 0;
    margin: 4px 0;
    overflow: hidden;
    cursor: pointer;
    -webkit-user-select: none;
    user-select: none;
}
.card-map img {
    max-width: 100%;
    transition: width 0.2s ease;
}
.card-map img.basemap {
    display: block;
}
.card-map img.overlay {
    position: absolute;
    top: 0;
    left: 0;
    width: 100%;
    height: 100%;
}
.card-map img.context {
    display: none;
}
.hint-btn {
    position: absolute;
    top: 8px;
    left: 8px;
    padding: 5px 12px;
    font-size: 12px;
    color: #2E86C1;
    background: rgba(235,245,251,0.9);
    border: 1px solid #AED6F1;
    border-radius: 5px;
    cursor: pointer;
    z-index: 5;
    line-height: normal;
}
.hint-btn:hover {
    background: rgba(212,230,241,0.95);
}
`

// Pinch-to-zoom and double-tap handler, appended to every POI
// template.
const poiZoomScript = `<script>
(function(){
  document.querySelectorAll('.card-map').forEach(function(mc){
    var scale = 1;
    var lastTap = 0;
    mc.addEventListener('touchend', function(e) {
      var now = Date.now();
      if (now - lastTap < 300) {
        e.preventDefault();
        scale = scale > 1 ? 1 : 2.5;
        applyZoom(mc, scale);
      }
      lastTap = now;
    });
    mc.addEventListener('dblclick', function(e) {
      e.preventDefault();
      scale = scale > 1 ? 1 : 2.5;
      applyZoom(mc, scale);
    });
  });
  function applyZoom(mc, s) {
    mc.querySelectorAll('img').forEach(function(img) {
      img.style.width = s > 1 ? (s * 100) + '%' : '';
      img.style.maxWidth = s > 1 ? 'none' : '100%';
    });
    mc.style.overflow = s > 1 ? 'auto' : 'hidden';
    if (s <= 1) { mc.scrollLeft = 0; mc.scrollTop = 0; }
  }
})();
</script>
`

const poiHintButton = `<button class="hint-btn" onclick="var i=this.parentNode.querySelector('img.context');var v=i.style.display!=='block';i.style.display=v?'block':'none';this.textContent=v?'✖ Kontext':'▦ Kontext';sessionStorage.setItem('ps_ctx',v?'1':'0');">&#9638; Kontext</button>`

const poiRestoreScript = `<script>(function(){var c=document.querySelector('.card-map');if(!c)return;if(sessionStorage.getItem('ps_ctx')==='1'){var x=c.querySelector('img.context');if(x)x.style.display='block';var b=c.querySelector('.hint-btn');if(b)b.textContent='✖ Kontext';}})();</script>`

// "Wo ist X?": locate a named POI on the blank map.
const poiTmplLocateFront = `<div class="question">Wo ist: {{Name}}?</div>
<div class="info">{{Category}} · {{Info}}</div>
<hr>
<div class="card-map">
{{Basemap}}
{{Context}}
` + poiHintButton + `
</div>
` + poiRestoreScript + "\n" + poiZoomScript

const poiTmplLocateBack = `<div class="answer-info">
<span class="name">{{Name}}</span>
<span class="detail"> · {{Category}} · {{Info}}</span>
</div>
<hr>
<div class="card-map">
{{Basemap}}
{{AllPois}}
{{BackOverlay}}
{{Context}}
` + poiHintButton + `
</div>
` + poiRestoreScript + "\n" + poiZoomScript

// "Was ist das?": identify the highlighted POI.
const poiTmplIdentifyFront = `<div class="question">Was ist das?</div>
<div class="info">{{Category}}</div>
<hr>
<div class="card-map">
{{Basemap}}
{{AllPois}}
{{Highlight}}
{{Context}}
` + poiHintButton + `
</div>
` + poiRestoreScript + "\n" + poiZoomScript

const poiTmplIdentifyBack = `<div class="answer-info">
<span class="name">{{Name}}</span><br>
<span class="detail">{{Category}} · {{Info}}</span>
</div>
<hr>
<div class="card-map">
{{Basemap}}
{{AllPois}}
{{BackOverlay}}
{{Context}}
` + poiHintButton + `
</div>
` + poiRestoreScript + "\n" + poiZoomScript

// groupModel builds the note type for a polygon deck. name doubles as
// the model title shown in Anki's editor.
func groupModel(id int64, name string) *Model {
	return &Model{
		ID:     id,
		Name:   name,
		Fields: groupFields,
		Templates: []Template{
			{Name: "Gebirgsgruppe", Front: groupTmplFront, Back: groupTmplBack},
		},
		CSS:      groupCSS,
		Required: [][]int{{3, 4}},
	}
}

// poiModel builds the two-template note type for a POI deck.
func poiModel(id int64, name string) *Model {
	return &Model{
		ID:     id,
		Name:   name,
		Fields: poiFields,
		Templates: []Template{
			{Name: "Wo ist X?", Front: poiTmplLocateFront, Back: poiTmplLocateBack},
			{Name: "Was ist das?", Front: poiTmplIdentifyFront, Back: poiTmplIdentifyBack},
		},
		CSS:      poiCSS,
		Required: [][]int{{1, 4}, {4, 5, 6}},
	}
}
